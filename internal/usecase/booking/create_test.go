package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/salaohub/salon-scheduler/internal/domain/booking"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================

type fakeRepo struct {
	workingHoursOK  bool
	workingHoursErr error

	created *models.Appointment
}

func (f *fakeRepo) GetSalonByID(ctx context.Context, id uint) (*models.Salon, error) {
	return &models.Salon{ID: id, Timezone: "America/Sao_Paulo", MinAdvanceMinutes: 120}, nil
}

func (f *fakeRepo) GetService(ctx context.Context, salonID, serviceID uint) (*models.Service, error) {
	return &models.Service{ID: serviceID, SalonID: salonID, Name: "Corte", DurationMin: 50, Price: 50}, nil
}

func (f *fakeRepo) GetProfessional(ctx context.Context, salonID, professionalID uint) (*models.Professional, error) {
	return &models.Professional{ID: professionalID, SalonID: salonID, Name: "Carlos"}, nil
}

func (f *fakeRepo) GetOrCreateClient(ctx context.Context, salonID uint, name, phone, email string) (*models.Client, error) {
	return &models.Client{ID: 7, SalonID: salonID, Name: name, WhatsApp: phone}, nil
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	ap.ID = 99
	f.created = ap
	return nil
}

func (f *fakeRepo) AssertNoTimeConflict(ctx context.Context, professionalID uint, start, end time.Time) error {
	return nil
}

func (f *fakeRepo) GetAppointmentForSalon(ctx context.Context, appointmentID, salonID uint) (*models.Appointment, error) {
	return nil, errors.New("não usado")
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return nil
}

func (f *fakeRepo) GetWorkingHours(ctx context.Context, professionalID uint, weekday int) (*models.WorkingHours, error) {
	return nil, errors.New("não usado")
}

func (f *fakeRepo) ListAppointmentsForDay(ctx context.Context, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeRepo) IsWithinWorkingHours(ctx context.Context, professionalID uint, start, end time.Time) (bool, error) {
	return f.workingHoursOK, f.workingHoursErr
}

func (f *fakeRepo) ListAppointmentsForPeriod(ctx context.Context, salonID uint, start, end time.Time) ([]models.Appointment, error) {
	return nil, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// TESTS
// ======================================================

func createInput() CreateAppointmentInput {
	future := time.Now().AddDate(0, 1, 0)
	return CreateAppointmentInput{
		SalonID:        42,
		ProfessionalID: 6,
		ServiceID:      1,
		ClientName:     "Maria",
		ClientPhone:    "5511999998888",
		Date:           future.Format("2006-01-02"),
		Time:           "14:00",
	}
}

func TestCreateOutsideWorkingHours(t *testing.T) {
	repo := &fakeRepo{workingHoursOK: false}
	uc := NewCreateAppointment(repo, nil)

	_, err := uc.Execute(context.Background(), createInput())
	if !httperr.IsBusiness(err, "outside_working_hours") {
		t.Fatalf("err = %v, want outside_working_hours", err)
	}
	if repo.created != nil {
		t.Error("agendamento criado fora do expediente")
	}
}

func TestCreatePropagatesWorkingHoursError(t *testing.T) {
	dbErr := errors.New("conexão perdida")
	repo := &fakeRepo{workingHoursErr: dbErr}
	uc := NewCreateAppointment(repo, nil)

	_, err := uc.Execute(context.Background(), createInput())
	if !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want o erro do repositório", err)
	}

	// falha de infraestrutura não pode virar erro de negócio para o cliente
	if httperr.IsBusiness(err, "outside_working_hours") {
		t.Error("erro do banco reportado como outside_working_hours")
	}
	if repo.created != nil {
		t.Error("agendamento criado após falha do repositório")
	}
}

func TestCreateInvalidDate(t *testing.T) {
	repo := &fakeRepo{workingHoursOK: true}
	uc := NewCreateAppointment(repo, nil)

	in := createInput()
	in.Date = "31/12/2026"

	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "invalid_date_or_time") {
		t.Fatalf("err = %v, want invalid_date_or_time", err)
	}
}

func TestCreateTooSoon(t *testing.T) {
	repo := &fakeRepo{workingHoursOK: true}
	uc := NewCreateAppointment(repo, nil)

	soon := timezone.NowIn("America/Sao_Paulo").Add(30 * time.Minute)
	in := createInput()
	in.Date = soon.Format("2006-01-02")
	in.Time = soon.Format("15:04")

	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "too_soon") {
		t.Fatalf("err = %v, want too_soon", err)
	}
}
