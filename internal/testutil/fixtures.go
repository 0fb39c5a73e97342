// Package testutil seeds an in-memory store for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
)

var seq int64

// unique returns a process-wide counter so generated phones and IINs never collide
func unique() int64 {
	return atomic.AddInt64(&seq, 1)
}

type Fixture struct {
	Store *memory.Store
	Repos *memory.Repositories
}

func NewFixture() *Fixture {
	store := memory.NewStore()
	return &Fixture{Store: store, Repos: store.Repositories()}
}

func (f *Fixture) Clinic(t *testing.T, name string) *model.Clinic {
	t.Helper()
	c := &model.Clinic{Name: name, IsActive: true}
	require.NoError(t, f.Repos.Clinics.Create(context.Background(), c))
	return c
}

// User creates an active user. The password hash is left empty, use
// UserWithHash when the user has to log in.
func (f *Fixture) User(t *testing.T, role string, clinicID *int64) *model.User {
	t.Helper()
	return f.UserWithHash(t, role, clinicID, "")
}

func (f *Fixture) UserWithHash(t *testing.T, role string, clinicID *int64, hash string) *model.User {
	t.Helper()
	n := unique()
	u := &model.User{
		FullName:     fmt.Sprintf("%s %d", role, n),
		Phone:        fmt.Sprintf("+7701%07d", n),
		PasswordHash: hash,
		Role:         role,
		ClinicID:     clinicID,
		IsActive:     true,
	}
	require.NoError(t, f.Repos.Users.Create(context.Background(), u))
	return u
}

func (f *Fixture) Patient(t *testing.T, name string) *model.Patient {
	t.Helper()
	n := unique()
	p := &model.Patient{
		FullName:  name,
		Phone:     fmt.Sprintf("+7702%07d", n),
		IIN:       fmt.Sprintf("9001%08d", n),
		BirthDate: model.NewDate(1990, time.January, 1),
	}
	require.NoError(t, f.Repos.Patients.Create(context.Background(), p))
	return p
}

func (f *Fixture) Service(t *testing.T, name string, price float64, clinicID *int64) *model.Service {
	t.Helper()
	s := &model.Service{Name: name, Price: price, IsActive: true, ClinicID: clinicID}
	require.NoError(t, f.Repos.Services.Create(context.Background(), s))
	return s
}

func Int64(v int64) *int64 { return &v }

func String(v string) *string { return &v }

func Bool(v bool) *bool { return &v }
