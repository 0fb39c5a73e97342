package treatmentorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	"github.com/jwalitptl/dental-api/internal/service/treatmentplan"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type orderFixture struct {
	*testutil.Fixture
	svc     *Service
	plans   *treatmentplan.Service
	clinic  *model.Clinic
	doctor  *model.User
	patient *model.Patient
	filling *model.Service
	consult *model.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := testutil.NewFixture()
	plans := treatmentplan.NewService(f.Repos.Plans, f.Repos.Patients, f.Repos.Services, f.Repos.Tx)
	clinic := f.Clinic(t, "Smile")
	return &orderFixture{
		Fixture: f,
		svc: NewService(f.Repos.Orders, f.Repos.Patients, f.Repos.Users, f.Repos.Tx, plans,
			notification.NewService(nil, f.Repos.Outbox)),
		plans:   plans,
		clinic:  clinic,
		doctor:  f.User(t, model.RoleDoctor, &clinic.ID),
		patient: f.Patient(t, "Maria Petrova"),
		filling: f.Service(t, "Filling", 15000, nil),
		consult: f.Service(t, "Consultation", 5000, &clinic.ID),
	}
}

func (f *orderFixture) request(lines ...model.TreatmentOrderServiceInput) model.CreateTreatmentOrderRequest {
	return model.CreateTreatmentOrderRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		VisitDate: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
		Services:  lines,
	}
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), f.doctor, f.request(
		model.TreatmentOrderServiceInput{ServiceID: f.filling.ID, ServiceName: "Filling", ServicePrice: 15000, Quantity: 2, ToothNumber: 16},
		model.TreatmentOrderServiceInput{ServiceID: f.filling.ID, ServiceName: "Filling", ServicePrice: 15000, ToothNumber: 16},
		model.TreatmentOrderServiceInput{ServiceID: f.consult.ID, ServiceName: "Consultation", ServicePrice: 5000},
	))
	require.NoError(t, err)

	assert.Equal(t, f.clinic.ID, *order.ClinicID)
	assert.Equal(t, model.TreatmentOrderStatusCompleted, order.Status)
	assert.Equal(t, 2*15000.0+15000+5000, order.TotalAmount)
	assert.Len(t, order.Services, 3)
	assert.Equal(t, f.patient.FullName, order.PatientName)

	plans, err := f.plans.ListPatientPlans(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, f.doctor.ID, plans[0].DoctorID)
	require.Len(t, plans[0].Services, 1)
	assert.Equal(t, 16, plans[0].Services[0].ToothID)

	events := f.Store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventTreatmentOrderCreated, events[0].EventType)
}

func TestCreateOrder_ExplicitTotal(t *testing.T) {
	f := newOrderFixture(t)
	req := f.request(model.TreatmentOrderServiceInput{ServiceID: f.filling.ID, ServiceName: "Filling", ServicePrice: 15000, Quantity: 1})
	req.TotalAmount = 12000
	req.Status = "draft"

	order, err := f.svc.CreateOrder(context.Background(), f.doctor, req)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, order.TotalAmount)
	assert.Equal(t, "draft", order.Status)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(t)

	noClinic := f.User(t, model.RoleDoctor, nil)
	_, err := f.svc.CreateOrder(context.Background(), noClinic, f.request())
	assert.Equal(t, "User is not assigned to a clinic", apperrors.As(err).Message)

	req := f.request()
	req.PatientID = 999
	_, err = f.svc.CreateOrder(context.Background(), f.doctor, req)
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)

	req = f.request()
	req.DoctorID = 999
	_, err = f.svc.CreateOrder(context.Background(), f.doctor, req)
	assert.Equal(t, "Doctor not found", apperrors.As(err).Message)
}

func TestCreateOrder_UnknownService(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), f.doctor, f.request(
		model.TreatmentOrderServiceInput{ServiceID: f.filling.ID, ServicePrice: 15000, ToothNumber: 16},
		model.TreatmentOrderServiceInput{ServiceID: 999, ServiceName: "Whitening", ServicePrice: 30000},
	))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Service not found", apperrors.As(err).Message)

	list, err := f.svc.ListOrders(context.Background(), f.doctor, nil, "", 0, 100)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.Store.OutboxEvents())
}

func TestOrders_ClinicScoping(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.CreateOrder(context.Background(), f.doctor, f.request())
	require.NoError(t, err)

	other := f.Clinic(t, "Other")
	outsider := f.User(t, model.RoleDoctor, &other.ID)

	_, err = f.svc.GetOrder(context.Background(), outsider, order.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.True(t, apperrors.Is(f.svc.DeleteOrder(context.Background(), outsider, order.ID), apperrors.ErrNotFound))

	list, err := f.svc.ListOrders(context.Background(), outsider, nil, "", 0, 100)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.ListOrders(context.Background(), outsider, &f.clinic.ID, "petrova", 0, 100)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateOrder(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.CreateOrder(context.Background(), f.doctor, f.request(
		model.TreatmentOrderServiceInput{ServiceID: f.filling.ID, ServiceName: "Filling", ServicePrice: 15000, Quantity: 1},
	))
	require.NoError(t, err)

	total := 20000.0
	lines := []model.TreatmentOrderServiceInput{
		{ServiceID: f.filling.ID, ServiceName: "Filling", ServicePrice: 10000, Quantity: 2, ToothNumber: 21},
	}
	updated, err := f.svc.UpdateOrder(context.Background(), f.doctor, order.ID, model.UpdateTreatmentOrderRequest{
		TotalAmount: &total,
		Services:    &lines,
		Status:      testutil.String("paid"),
	})
	require.NoError(t, err)
	assert.Equal(t, total, updated.TotalAmount)
	assert.Equal(t, "paid", updated.Status)
	require.Len(t, updated.Services, 1)
	assert.Equal(t, 21, updated.Services[0].ToothNumber)

	_, err = f.svc.UpdateOrder(context.Background(), f.doctor, order.ID, model.UpdateTreatmentOrderRequest{
		DoctorID: testutil.Int64(999),
	})
	assert.Equal(t, "Doctor not found", apperrors.As(err).Message)

	missing := []model.TreatmentOrderServiceInput{{ServiceID: 999, ServicePrice: 1000}}
	_, err = f.svc.UpdateOrder(context.Background(), f.doctor, order.ID, model.UpdateTreatmentOrderRequest{
		Services: &missing,
	})
	assert.Equal(t, "Service not found", apperrors.As(err).Message)
	kept, err := f.svc.GetOrder(context.Background(), f.doctor, order.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Services, 1)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), f.doctor, order.ID))
	_, err = f.svc.GetOrder(context.Background(), f.doctor, order.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestTotal(t *testing.T) {
	assert.Zero(t, Total(nil))
	assert.Equal(t, 35000.0, Total([]*model.TreatmentOrderService{
		{ServicePrice: 15000, Quantity: 2},
		{ServicePrice: 5000, Quantity: 1},
	}))
}
