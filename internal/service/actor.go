package service

// Roles carried by the identity provider.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor acts as a teacher.
func (a Actor) IsTeacher() bool {
	return a.ID != 0 && a.Role == RoleTeacher
}

// IsStudent reports whether the actor acts as a student.
func (a Actor) IsStudent() bool {
	return a.ID != 0 && a.Role == RoleStudent
}
