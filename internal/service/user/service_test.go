package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
)

type recordingCache struct {
	phones []string
}

func (c *recordingCache) Invalidate(phone string) {
	c.phones = append(c.phones, phone)
}

type userFixture struct {
	*testutil.Fixture
	svc    *Service
	cache  *recordingCache
	hasher security.PasswordHasher
	clinic *model.Clinic
	admin  *model.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := testutil.NewFixture()
	cache := &recordingCache{}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	clinic := f.Clinic(t, "Smile")
	return &userFixture{
		Fixture: f,
		svc:     NewService(f.Repos.Users, f.Repos.Clinics, hasher, cache),
		cache:   cache,
		hasher:  hasher,
		clinic:  clinic,
		admin:   f.User(t, model.RoleAdmin, &clinic.ID),
	}
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.CreateUser(context.Background(), model.CreateUserRequest{
		FullName: "Dr. Ivanov",
		Phone:    "+77771234568",
		Password: "doctor123",
		Role:     model.RoleDoctor,
		ClinicID: &f.clinic.ID,
	})
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.NoError(t, f.hasher.Compare(u.PasswordHash, "doctor123"))

	_, err = f.svc.CreateUser(context.Background(), model.CreateUserRequest{
		FullName: "Dup", Phone: "+77771234568", Password: "secret1", Role: model.RoleNurse,
	})
	assert.Equal(t, msgPhoneTaken, apperrors.As(err).Message)

	_, err = f.svc.CreateUser(context.Background(), model.CreateUserRequest{
		FullName: "X", Phone: "+77770000001", Password: "secret1", Role: model.RoleNurse, ClinicID: testutil.Int64(999),
	})
	assert.Equal(t, "Clinic not found", apperrors.As(err).Message)

	inactive, err := f.svc.CreateUser(context.Background(), model.CreateUserRequest{
		FullName: "Y", Phone: "+77770000002", Password: "secret1", Role: model.RoleRegistrar, IsActive: testutil.Bool(false),
	})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}

func TestGetUser_Permissions(t *testing.T) {
	f := newUserFixture(t)
	colleague := f.User(t, model.RoleNurse, &f.clinic.ID)
	doctor := f.User(t, model.RoleDoctor, &f.clinic.ID)

	other := f.Clinic(t, "Other")
	outsider := f.User(t, model.RoleDoctor, &other.ID)

	got, err := f.svc.GetUser(context.Background(), doctor, colleague.ID)
	require.NoError(t, err)
	assert.Equal(t, colleague.ID, got.ID)

	_, err = f.svc.GetUser(context.Background(), outsider, colleague.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = f.svc.GetUser(context.Background(), f.admin, outsider.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetUser(context.Background(), f.admin, 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateUser_InvalidatesCache(t *testing.T) {
	f := newUserFixture(t)
	u := f.User(t, model.RoleNurse, &f.clinic.ID)
	oldPhone := u.Phone

	updated, err := f.svc.UpdateUser(context.Background(), u.ID, model.UpdateUserRequest{
		Phone:    testutil.String("+77779999999"),
		Role:     testutil.String(model.RoleDoctor),
		Password: testutil.String("newpass1"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, updated.Role)
	assert.NoError(t, f.hasher.Compare(updated.PasswordHash, "newpass1"))
	assert.Equal(t, []string{oldPhone, "+77779999999"}, f.cache.phones)

	_, err = f.svc.UpdateUser(context.Background(), u.ID, model.UpdateUserRequest{Phone: &f.admin.Phone})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDeleteAndDeactivate(t *testing.T) {
	f := newUserFixture(t)
	u := f.User(t, model.RoleNurse, &f.clinic.ID)

	err := f.svc.DeleteUser(context.Background(), f.admin, f.admin.ID)
	assert.Equal(t, "Cannot delete yourself", apperrors.As(err).Message)

	_, err = f.svc.DeactivateUser(context.Background(), f.admin, f.admin.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	deactivated, err := f.svc.DeactivateUser(context.Background(), f.admin, u.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	activated, err := f.svc.ActivateUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	require.NoError(t, f.svc.DeleteUser(context.Background(), f.admin, u.ID))
	_, err = f.Repos.Users.Get(context.Background(), u.ID)
	assert.Error(t, err)
	assert.Contains(t, f.cache.phones, u.Phone)
}

func TestDeleteUser_Referenced(t *testing.T) {
	f := newUserFixture(t)
	doctor := f.User(t, model.RoleDoctor, &f.clinic.ID)
	patient := f.Patient(t, "Askhat Kasymov")
	require.NoError(t, f.Repos.Appointments.Create(context.Background(), &model.Appointment{
		PatientID:           patient.ID,
		DoctorID:            &doctor.ID,
		AppointmentDatetime: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
		Status:              model.AppointmentStatusScheduled,
	}))

	err := f.svc.DeleteUser(context.Background(), f.admin, doctor.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "User is referenced by other records", apperrors.As(err).Message)

	_, err = f.Repos.Users.Get(context.Background(), doctor.ID)
	assert.NoError(t, err)
}

func TestListDoctors(t *testing.T) {
	f := newUserFixture(t)
	doctor := f.User(t, model.RoleDoctor, &f.clinic.ID)
	nurse := f.User(t, model.RoleNurse, &f.clinic.ID)
	f.User(t, model.RoleRegistrar, &f.clinic.ID)
	retired := f.User(t, model.RoleDoctor, &f.clinic.ID)
	_, err := f.svc.DeactivateUser(context.Background(), f.admin, retired.ID)
	require.NoError(t, err)

	users, err := f.svc.ListDoctors(context.Background(), doctor, nil)
	require.NoError(t, err)
	var ids []int64
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []int64{doctor.ID, nurse.ID}, ids)

	noClinic := f.User(t, model.RoleAdmin, nil)
	_, err = f.svc.ListDoctors(context.Background(), noClinic, nil)
	assert.Equal(t, "Clinic ID is required", apperrors.As(err).Message)

	users, err = f.svc.ListDoctors(context.Background(), noClinic, &f.clinic.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
