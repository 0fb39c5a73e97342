package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/testutil"
	"github.com/jwalitptl/dental-api/pkg/security"
)

func TestRun_Idempotent(t *testing.T) {
	f := testutil.NewFixture()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(f.Repos.Clinics, f.Repos.Users, hasher)
	opts := Options{Phone: "+77770000000", Password: "admin123"}

	first, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, first.ClinicCreated)
	assert.True(t, first.UserCreated)
	assert.Equal(t, DefaultClinicName, first.Clinic.Name)
	assert.Equal(t, model.RoleAdmin, first.Superuser.Role)
	assert.Equal(t, "Administrator", first.Superuser.FullName)
	assert.Equal(t, first.Clinic.ID, *first.Superuser.ClinicID)
	assert.NoError(t, hasher.Compare(first.Superuser.PasswordHash, "admin123"))

	second, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, second.ClinicCreated)
	assert.False(t, second.UserCreated)
	assert.Equal(t, first.Superuser.ID, second.Superuser.ID)

	clinics, err := f.Repos.Clinics.List(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, clinics, 1)
}

func TestRun_WithoutCredentials(t *testing.T) {
	f := testutil.NewFixture()
	svc := NewService(f.Repos.Clinics, f.Repos.Users, security.NewBcryptHasher(bcrypt.MinCost))

	res, err := svc.Run(context.Background(), Options{ClinicName: "Smile"})
	require.NoError(t, err)
	assert.Equal(t, "Smile", res.Clinic.Name)
	assert.Nil(t, res.Superuser)
}

func TestSeedCatalog_SkipsExisting(t *testing.T) {
	f := testutil.NewFixture()
	f.Service(t, DefaultCatalog[0].Name, 1, nil)

	n, err := SeedCatalog(context.Background(), f.Repos.Services, DefaultCatalog)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog)-1, n)

	n, err = SeedCatalog(context.Background(), f.Repos.Services, DefaultCatalog)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := f.Repos.Services.List(context.Background(), model.ServiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultCatalog))
	for _, s := range all {
		assert.Nil(t, s.ClinicID)
	}
}
