package clinicpatient

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

func newService(t *testing.T) (*Service, *testutil.Fixture, *model.Clinic) {
	t.Helper()
	f := testutil.NewFixture()
	svc := NewService(f.Repos.ClinicPatients, f.Repos.Patients)
	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC) }
	return svc, f, f.Clinic(t, "Smile")
}

func TestAddPatient(t *testing.T) {
	svc, f, clinic := newService(t)
	p := f.Patient(t, "Aigul")

	d, err := svc.AddPatient(context.Background(), clinic.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, "Aigul", d.PatientName)
	assert.Equal(t, "Smile", d.ClinicName)
	assert.Equal(t, svc.now(), d.FirstVisitDate)

	_, err = svc.AddPatient(context.Background(), clinic.ID, p.ID)
	assert.Equal(t, "Patient already added to this clinic", apperrors.As(err).Message)

	_, err = svc.AddPatient(context.Background(), clinic.ID, 999)
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)
}

func TestAddPatient_ReactivatesLink(t *testing.T) {
	svc, f, clinic := newService(t)
	p := f.Patient(t, "Aigul")

	d, err := svc.AddPatient(context.Background(), clinic.ID, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.MarkVisited(context.Background(), clinic.ID, p.ID, svc.now()))
	require.NoError(t, svc.RemovePatient(context.Background(), clinic.ID, d.ID))

	list, err := svc.ListClinicPatients(context.Background(), clinic.ID, nil, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	again, err := svc.AddPatient(context.Background(), clinic.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Nil(t, again.LastVisitDate)
}

func TestEnsureLinked(t *testing.T) {
	svc, f, clinic := newService(t)
	p := f.Patient(t, "Aigul")

	require.NoError(t, svc.EnsureLinked(context.Background(), clinic.ID, p.ID))
	require.NoError(t, svc.EnsureLinked(context.Background(), clinic.ID, p.ID))

	list, err := svc.ListClinicPatients(context.Background(), clinic.ID, nil, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func TestScopedToClinic(t *testing.T) {
	svc, f, clinic := newService(t)
	other := f.Clinic(t, "Other")
	p := f.Patient(t, "Aigul")

	d, err := svc.AddPatient(context.Background(), clinic.ID, p.ID)
	require.NoError(t, err)

	err = svc.RemovePatient(context.Background(), other.ID, d.ID)
	assert.Equal(t, "Clinic patient not found", apperrors.As(err).Message)

	_, err = svc.UpdateClinicPatient(context.Background(), other.ID, d.ID, model.UpdateClinicPatientRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListClinicPatients_OrderedByLastVisit(t *testing.T) {
	svc, f, clinic := newService(t)
	never := f.Patient(t, "Never")
	old := f.Patient(t, "Old")
	recent := f.Patient(t, "Recent")
	for _, p := range []*model.Patient{never, old, recent} {
		_, err := svc.AddPatient(context.Background(), clinic.ID, p.ID)
		require.NoError(t, err)
	}
	base := svc.now()
	require.NoError(t, svc.MarkVisited(context.Background(), clinic.ID, old.ID, base.Add(-48*time.Hour)))
	require.NoError(t, svc.MarkVisited(context.Background(), clinic.ID, recent.ID, base))

	list, err := svc.ListClinicPatients(context.Background(), clinic.ID, nil, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Patients, 3)
	assert.Equal(t, "Recent", list.Patients[0].PatientName)
	assert.Equal(t, "Old", list.Patients[1].PatientName)
	assert.Equal(t, "Never", list.Patients[2].PatientName)

	list, err = svc.ListClinicPatients(context.Background(), clinic.ID, nil, "rec", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func TestSearchPatients(t *testing.T) {
	svc, f, clinic := newService(t)
	linked := f.Patient(t, "Askhat Linked")
	f.Patient(t, "Askhat Outside")
	_, err := svc.AddPatient(context.Background(), clinic.ID, linked.ID)
	require.NoError(t, err)

	hits, err := svc.SearchPatients(context.Background(), clinic.ID, "askhat")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.True(t, hits[0].IsInClinic)
	assert.NotNil(t, hits[0].FirstVisitDate)
	assert.False(t, hits[1].IsInClinic)
	assert.Nil(t, hits[1].FirstVisitDate)

	_, err = svc.SearchPatients(context.Background(), clinic.ID, " ")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDoctorStats(t *testing.T) {
	svc, f, clinic := newService(t)
	doctor := f.User(t, model.RoleDoctor, &clinic.ID)
	f.User(t, model.RoleRegistrar, &clinic.ID)
	p1, p2 := f.Patient(t, "One"), f.Patient(t, "Two")
	for _, pid := range []int64{p1.ID, p1.ID, p2.ID} {
		require.NoError(t, f.Repos.Appointments.Create(context.Background(), &model.Appointment{
			PatientID:           pid,
			DoctorID:            &doctor.ID,
			AppointmentDatetime: svc.now(),
			Status:              model.AppointmentStatusScheduled,
		}))
	}

	stats, err := svc.DoctorStats(context.Background(), clinic.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, doctor.ID, stats[0].DoctorID)
	assert.Equal(t, 2, stats[0].PatientCount)
}
