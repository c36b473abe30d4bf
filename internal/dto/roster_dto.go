package dto

// RosterSeedRequest provisions classes with their registered students.
type RosterSeedRequest struct {
	Classes []RosterClass `json:"classes" validate:"required,min=1,max=500,dive"`
}

// RosterClass is one class of a roster seed.
type RosterClass struct {
	ID        uint            `json:"id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required,max=255"`
	TeacherID uint            `json:"teacher_id" validate:"required,gt=0"`
	Students  []RosterStudent `json:"students" validate:"omitempty,max=1000,dive"`
}

// RosterStudent is a student registered in a seeded class.
type RosterStudent struct {
	ID   uint   `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,max=255"`
}

// RosterSeedResponse reports the rows written by a roster seed.
type RosterSeedResponse struct {
	Classes       int64 `json:"classes"`
	Registrations int64 `json:"registrations"`
}
