package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/events"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAssignmentRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{items: map[uint]models.Assignment{}}
}

func (r *fakeAssignmentRepo) ListByOwner(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []models.Assignment
	for _, item := range r.items {
		if item.CreatedBy == filter.CreatedBy {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })

	total := int64(len(owned))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(owned) {
		start = len(owned)
	}
	end := start + filter.PageSize
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (r *fakeAssignmentRepo) ListByClasses(_ context.Context, classIDs []uint) ([]models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[uint]bool{}
	for _, id := range classIDs {
		wanted[id] = true
	}

	var matched []models.Assignment
	for _, item := range r.items {
		for _, classID := range item.ClassIDs() {
			if wanted[classID] {
				matched = append(matched, item)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	assignment.ID = r.nextID
	r.items[assignment.ID] = *assignment
	return nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[assignment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Title = assignment.Title
	stored.Questions = assignment.Questions
	stored.UpdatedAt = assignment.UpdatedAt
	r.items[assignment.ID] = stored
	return nil
}

func (r *fakeAssignmentRepo) ReplaceClasses(_ context.Context, assignmentID uint, classIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Classes = nil
	for _, classID := range classIDs {
		stored.Classes = append(stored.Classes, models.AssignmentClass{AssignmentID: assignmentID, ClassID: classID})
	}
	r.items[assignmentID] = stored
	return nil
}

type fakeTemplateRepo struct {
	nextID uint
	items  map[uint]models.AssignmentTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{items: map[uint]models.AssignmentTemplate{}}
}

func (r *fakeTemplateRepo) ListByOwner(_ context.Context, teacherID uint) ([]models.AssignmentTemplate, error) {
	var owned []models.AssignmentTemplate
	for _, item := range r.items {
		if item.CreatedBy == teacherID {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })
	return owned, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id uint) (models.AssignmentTemplate, error) {
	item, ok := r.items[id]
	if !ok {
		return models.AssignmentTemplate{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, template *models.AssignmentTemplate) error {
	r.nextID++
	template.ID = r.nextID
	r.items[template.ID] = *template
	return nil
}

// fakeSubmissionRepo enforces the (assignment, student) uniqueness like the
// database does. When barrier is set, CreateIfAbsent callers wait for each
// other before inserting.
type fakeSubmissionRepo struct {
	mu          sync.Mutex
	nextID      uint
	items       map[uint]models.Submission
	assignments *fakeAssignmentRepo
	barrier     *sync.WaitGroup
}

func newFakeSubmissionRepo(assignments *fakeAssignmentRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{items: map[uint]models.Submission{}, assignments: assignments}
}

func (r *fakeSubmissionRepo) withAssignment(submission models.Submission) models.Submission {
	if r.assignments != nil {
		if assignment, err := r.assignments.GetByID(context.Background(), submission.AssignmentID); err == nil {
			submission.Assignment = assignment
		}
	}
	return submission
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.mu.Lock()
	item, ok := r.items[id]
	r.mu.Unlock()
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return r.withAssignment(item), nil
}

func (r *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.AssignmentID == assignmentID && item.StudentID == studentID {
			return item, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Submission, error) {
	r.mu.Lock()
	var mine []models.Submission
	for _, item := range r.items {
		if item.StudentID == studentID {
			mine = append(mine, item)
		}
	}
	r.mu.Unlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })
	for i := range mine {
		mine[i] = r.withAssignment(mine[i])
	}
	return mine, nil
}

func (r *fakeSubmissionRepo) ListByAssignments(_ context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[uint]bool{}
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	var matched []models.Submission
	for _, item := range r.items {
		if wanted[item.AssignmentID] {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (r *fakeSubmissionRepo) CreateIfAbsent(_ context.Context, submission *models.Submission) (bool, error) {
	if r.barrier != nil {
		r.barrier.Done()
		r.barrier.Wait()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.AssignmentID == submission.AssignmentID && item.StudentID == submission.StudentID {
			return false, nil
		}
	}
	r.nextID++
	submission.ID = r.nextID
	r.items[submission.ID] = *submission
	return true, nil
}

func (r *fakeSubmissionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fakeClassRepo struct {
	classes       []models.Class
	registrations []models.ClassRegistration
}

func (r *fakeClassRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Class, error) {
	var owned []models.Class
	for _, class := range r.classes {
		if class.TeacherID == teacherID {
			owned = append(owned, class)
		}
	}
	return owned, nil
}

func (r *fakeClassRepo) GetByIDs(_ context.Context, ids []uint) ([]models.Class, error) {
	var found []models.Class
	for _, id := range ids {
		for _, class := range r.classes {
			if class.ID == id {
				found = append(found, class)
			}
		}
	}
	return found, nil
}

func (r *fakeClassRepo) ListRegistrationsByStudent(_ context.Context, studentID uint) ([]models.ClassRegistration, error) {
	var mine []models.ClassRegistration
	for _, registration := range r.registrations {
		if registration.StudentID == studentID {
			mine = append(mine, registration)
		}
	}
	return mine, nil
}

func (r *fakeClassRepo) ListRegistrationsByClasses(_ context.Context, classIDs []uint) ([]models.ClassRegistration, error) {
	wanted := map[uint]bool{}
	for _, id := range classIDs {
		wanted[id] = true
	}
	var matched []models.ClassRegistration
	for _, registration := range r.registrations {
		if wanted[registration.ClassID] {
			matched = append(matched, registration)
		}
	}
	return matched, nil
}

func (r *fakeClassRepo) IsRegistered(_ context.Context, studentID uint, classIDs []uint) (bool, error) {
	for _, registration := range r.registrations {
		if registration.StudentID != studentID {
			continue
		}
		for _, id := range classIDs {
			if registration.ClassID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SubmissionGraded
}

func (p *recordingPublisher) PublishSubmissionGraded(_ context.Context, event events.SubmissionGraded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type recordingInvalidator struct {
	mu       sync.Mutex
	students []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, studentIDs ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = append(r.students, studentIDs...)
}
