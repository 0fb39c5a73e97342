package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

func names(services []*model.Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.Name)
	}
	return out
}

func TestListServices_IncludesGlobalEntries(t *testing.T) {
	f := testutil.NewFixture()
	svc := NewService(f.Repos.Services)
	mine, other := f.Clinic(t, "Mine"), f.Clinic(t, "Other")

	f.Service(t, "Cleaning", 15000, nil)
	f.Service(t, "Filling", 25000, &mine.ID)
	f.Service(t, "Whitening", 40000, &other.ID)
	hidden := f.Service(t, "Braces", 300000, &mine.ID)
	require.NoError(t, svc.DeleteService(context.Background(), hidden.ID))

	list, err := svc.ListServices(context.Background(), &mine.ID, true, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cleaning", "Filling"}, names(list))

	list, err = svc.ListServices(context.Background(), &mine.ID, false, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"Braces", "Cleaning", "Filling"}, names(list))
}

func TestCreateService_DefaultsToUserClinic(t *testing.T) {
	f := testutil.NewFixture()
	svc := NewService(f.Repos.Services)
	c := f.Clinic(t, "Mine")
	admin := f.User(t, model.RoleAdmin, &c.ID)

	created, err := svc.CreateService(context.Background(), admin, model.CreateServiceRequest{
		Name:  "X-ray",
		Price: 5000,
	})
	require.NoError(t, err)
	require.NotNil(t, created.ClinicID)
	assert.Equal(t, c.ID, *created.ClinicID)
	assert.True(t, created.IsActive)
}

func TestUpdateService(t *testing.T) {
	f := testutil.NewFixture()
	svc := NewService(f.Repos.Services)
	s := f.Service(t, "Cleaning", 15000, nil)

	price := 17500.0
	updated, err := svc.UpdateService(context.Background(), s.ID, model.UpdateServiceRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 17500.0, updated.Price)
	assert.Equal(t, "Cleaning", updated.Name)

	_, err = svc.UpdateService(context.Background(), 999, model.UpdateServiceRequest{})
	assert.Equal(t, "Service not found", apperrors.As(err).Message)
}
