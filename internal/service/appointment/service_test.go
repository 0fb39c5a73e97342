package appointment

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service/clinicpatient"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type fakePublisher struct {
	topics []string
	types  []string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, n model.Notification) error {
	p.topics = append(p.topics, topic)
	p.types = append(p.types, n.Type)
	return nil
}

type apptFixture struct {
	*testutil.Fixture
	svc       *Service
	publisher *fakePublisher
	clinic    *model.Clinic
	doctor    *model.User
	registrar *model.User
	patient   *model.Patient
}

func newApptFixture(t *testing.T) *apptFixture {
	t.Helper()
	f := testutil.NewFixture()
	pub := &fakePublisher{}
	cp := clinicpatient.NewService(f.Repos.ClinicPatients, f.Repos.Patients)
	svc := NewService(f.Repos.Appointments, f.Repos.Patients, f.Repos.Users, f.Repos.Tx, cp,
		notification.NewService(pub, f.Repos.Outbox))

	clinic := f.Clinic(t, "Smile")
	return &apptFixture{
		Fixture:   f,
		svc:       svc,
		publisher: pub,
		clinic:    clinic,
		doctor:    f.User(t, model.RoleDoctor, &clinic.ID),
		registrar: f.User(t, model.RoleRegistrar, &clinic.ID),
		patient:   f.Patient(t, "Aigul Nurlanova"),
	}
}

func (f *apptFixture) book(t *testing.T, at time.Time) *model.AppointmentDetail {
	t.Helper()
	appt, err := f.svc.CreateAppointment(context.Background(), f.registrar, model.CreateAppointmentRequest{
		PatientID:           f.patient.ID,
		DoctorID:            &f.doctor.ID,
		AppointmentDatetime: at,
		ServiceType:         testutil.String("Консультация"),
	})
	require.NoError(t, err)
	return appt
}

func TestCreateAppointment(t *testing.T) {
	f := newApptFixture(t)
	appt := f.book(t, time.Now().Add(24*time.Hour))

	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
	assert.Equal(t, f.registrar.ID, *appt.RegistrarID)

	link, err := f.Repos.ClinicPatients.GetByClinicAndPatient(context.Background(), f.clinic.ID, f.patient.ID)
	require.NoError(t, err)
	assert.True(t, link.IsActive)
	assert.Nil(t, link.LastVisitDate)

	events := f.Store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCreated, events[0].EventType)
	var payload model.AppointmentDetail
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, appt.ID, payload.ID)

	assert.ElementsMatch(t, []string{
		"appointments/" + itoa(f.doctor.ID),
		"user/" + itoa(f.doctor.ID),
	}, f.publisher.topics)
	assert.Equal(t, model.NotificationAppointmentCreated, f.publisher.types[0])
	assert.Equal(t, 1, f.Store.TxCount)
}

func TestCreateAppointment_SecondBookingKeepsSingleLink(t *testing.T) {
	f := newApptFixture(t)
	f.book(t, time.Now().Add(24*time.Hour))
	f.book(t, time.Now().Add(48*time.Hour))

	list, total, err := f.Repos.ClinicPatients.List(context.Background(), model.ClinicPatientFilter{
		ClinicID: f.clinic.ID,
		PageSize: model.PageSize{Page: 1, Size: 10},
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}

func TestCreateAppointment_Missing(t *testing.T) {
	f := newApptFixture(t)

	_, err := f.svc.CreateAppointment(context.Background(), f.registrar, model.CreateAppointmentRequest{
		PatientID:           999,
		AppointmentDatetime: time.Now(),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)

	_, err = f.svc.CreateAppointment(context.Background(), f.registrar, model.CreateAppointmentRequest{
		PatientID:           f.patient.ID,
		DoctorID:            testutil.Int64(999),
		AppointmentDatetime: time.Now(),
	})
	assert.Equal(t, "Doctor not found", apperrors.As(err).Message)
	assert.Empty(t, f.Store.OutboxEvents())
}

func TestCreateAppointment_WithoutDoctor(t *testing.T) {
	f := newApptFixture(t)
	appt, err := f.svc.CreateAppointment(context.Background(), f.registrar, model.CreateAppointmentRequest{
		PatientID:           f.patient.ID,
		AppointmentDatetime: time.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, appt.DoctorID)
	assert.Empty(t, f.publisher.topics)

	_, err = f.Repos.ClinicPatients.GetByClinicAndPatient(context.Background(), f.clinic.ID, f.patient.ID)
	assert.Error(t, err)
}

func TestUpdateAppointment_CompletionRecordsVisit(t *testing.T) {
	f := newApptFixture(t)
	appt := f.book(t, time.Now())
	visitedAt := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return visitedAt }

	updated, err := f.svc.UpdateAppointment(context.Background(), f.doctor, appt.ID, model.UpdateAppointmentRequest{
		Status: testutil.String(model.AppointmentStatusCompleted),
		Notes:  testutil.String("done"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
	assert.Equal(t, "done", *updated.Notes)

	link, err := f.Repos.ClinicPatients.GetByClinicAndPatient(context.Background(), f.clinic.ID, f.patient.ID)
	require.NoError(t, err)
	require.NotNil(t, link.LastVisitDate)
	assert.True(t, visitedAt.Equal(*link.LastVisitDate))

	var types []string
	for _, e := range f.Store.OutboxEvents() {
		types = append(types, e.EventType)
	}
	assert.ElementsMatch(t, []string{model.EventAppointmentCreated, model.EventAppointmentUpdated}, types)
	assert.Contains(t, f.publisher.types, model.NotificationAppointmentUpdate)
}

func TestUpdateAppointment_UnknownDoctor(t *testing.T) {
	f := newApptFixture(t)
	appt := f.book(t, time.Now())

	_, err := f.svc.UpdateAppointment(context.Background(), f.doctor, appt.ID, model.UpdateAppointmentRequest{
		DoctorID: testutil.Int64(12345),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = f.svc.UpdateAppointment(context.Background(), f.doctor, 12345, model.UpdateAppointmentRequest{})
	assert.Equal(t, "Appointment not found", apperrors.As(err).Message)
}

func TestCancelAppointment(t *testing.T) {
	f := newApptFixture(t)
	appt := f.book(t, time.Now())

	require.NoError(t, f.svc.CancelAppointment(context.Background(), appt.ID))
	got, err := f.svc.GetAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
}

func TestListAppointments_CurrentWeek(t *testing.T) {
	f := newApptFixture(t)
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.Local) // Wednesday
	f.svc.now = func() time.Time { return now }

	inWeek := f.book(t, time.Date(2024, 5, 12, 18, 0, 0, 0, time.Local))
	f.book(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.Local))
	f.book(t, time.Date(2024, 5, 5, 9, 0, 0, 0, time.Local))

	rows, err := f.svc.ListAppointments(context.Background(), ListParams{CurrentWeekOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inWeek.ID, rows[0].ID)

	rows, err = f.svc.ListAppointments(context.Background(), ListParams{DoctorID: &f.doctor.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 5, 8, 15, 30, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 5, 12, 23, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.now)
			assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), start)
			assert.Equal(t, time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC), end)
		})
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
