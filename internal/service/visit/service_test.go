package visit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type visitFixture struct {
	*testutil.Fixture
	svc     *Service
	doctor  *model.User
	patient *model.Patient
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	f := testutil.NewFixture()
	c := f.Clinic(t, "Smile")
	return &visitFixture{
		Fixture: f,
		svc:     NewService(f.Repos.Visits, f.Repos.Patients, f.Repos.Users, f.Repos.Appointments, f.Repos.Services),
		doctor:  f.User(t, model.RoleDoctor, &c.ID),
		patient: f.Patient(t, "Aigul"),
	}
}

func TestCreateVisit_SnapshotsCatalog(t *testing.T) {
	f := newVisitFixture(t)
	cleaning := f.Service(t, "Cleaning", 15000, nil)

	v, err := f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		VisitDate: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		ServiceID: &cleaning.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, v.Status)
	assert.Equal(t, "Cleaning", *v.ServiceName)
	assert.Equal(t, 15000.0, *v.ServicePrice)
	assert.Equal(t, "Aigul", *v.PatientName)

	// later catalog changes do not touch the snapshot
	cleaning.Price = 20000
	require.NoError(t, f.Repos.Services.Update(context.Background(), cleaning))
	got, err := f.svc.GetVisit(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, *got.ServicePrice)
}

func TestCreateVisit_MissingReferences(t *testing.T) {
	f := newVisitFixture(t)
	at := time.Now()

	_, err := f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{PatientID: 999, DoctorID: f.doctor.ID, VisitDate: at})
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)

	_, err = f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{PatientID: f.patient.ID, DoctorID: 999, VisitDate: at})
	assert.Equal(t, "Doctor not found", apperrors.As(err).Message)

	_, err = f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, VisitDate: at, AppointmentID: testutil.Int64(999),
	})
	assert.Equal(t, "Appointment not found", apperrors.As(err).Message)

	_, err = f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, VisitDate: at, ServiceID: testutil.Int64(999),
	})
	assert.Equal(t, "Service not found", apperrors.As(err).Message)
}

func TestUpdateVisit_ResnapshotsOnServiceChange(t *testing.T) {
	f := newVisitFixture(t)
	cleaning := f.Service(t, "Cleaning", 15000, nil)
	filling := f.Service(t, "Filling", 25000, nil)

	v, err := f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		VisitDate: time.Now(),
		ServiceID: &cleaning.ID,
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateVisit(context.Background(), v.ID, model.UpdateVisitRequest{
		ServiceID: &filling.ID,
		Status:    testutil.String(model.VisitStatusNoShow),
	})
	require.NoError(t, err)
	assert.Equal(t, "Filling", *updated.ServiceName)
	assert.Equal(t, 25000.0, *updated.ServicePrice)
	assert.Equal(t, model.VisitStatusNoShow, updated.Status)
}

func TestListVisits(t *testing.T) {
	f := newVisitFixture(t)
	other := f.Patient(t, "Other")
	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i, pid := range []int64{f.patient.ID, f.patient.ID, other.ID} {
		_, err := f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
			PatientID: pid,
			DoctorID:  f.doctor.ID,
			VisitDate: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	list, err := f.svc.ListVisits(context.Background(), &f.patient.ID, nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.Pages)
	require.Len(t, list.Visits, 1)
	assert.Equal(t, base.AddDate(0, 0, 1), list.Visits[0].VisitDate)

	list, err = f.svc.ListVisits(context.Background(), nil, &f.doctor.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
}

func TestDeleteVisit(t *testing.T) {
	f := newVisitFixture(t)
	v, err := f.svc.CreateVisit(context.Background(), model.CreateVisitRequest{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, VisitDate: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteVisit(context.Background(), v.ID))
	_, err = f.svc.GetVisit(context.Background(), v.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
