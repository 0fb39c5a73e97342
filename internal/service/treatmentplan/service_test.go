package treatmentplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/testutil"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type planFixture struct {
	*testutil.Fixture
	svc     *Service
	clinic  *model.Clinic
	doctor  *model.User
	patient *model.Patient
	filling *model.Service
	crown   *model.Service
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	f := testutil.NewFixture()
	clinic := f.Clinic(t, "Smile")
	return &planFixture{
		Fixture: f,
		svc:     NewService(f.Repos.Plans, f.Repos.Patients, f.Repos.Services, f.Repos.Tx),
		clinic:  clinic,
		doctor:  f.User(t, model.RoleDoctor, &clinic.ID),
		patient: f.Patient(t, "Askhat Kasymov"),
		filling: f.Service(t, "Filling", 15000, nil),
		crown:   f.Service(t, "Crown", 50000, &clinic.ID),
	}
}

func tooth(n int) *int { return &n }

func (f *planFixture) plan(t *testing.T, services ...model.TreatmentPlanServiceInput) *model.TreatmentPlanDetail {
	t.Helper()
	plan, err := f.svc.CreatePlan(context.Background(), f.doctor, model.CreateTreatmentPlanRequest{
		PatientID: f.patient.ID,
		Diagnosis: testutil.String("caries"),
		Services:  services,
	})
	require.NoError(t, err)
	return plan
}

func TestCreatePlan(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t,
		model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(16)},
		model.TreatmentPlanServiceInput{ServiceID: f.crown.ID, ToothID: tooth(11), Quantity: 2},
		model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(11)},
	)

	assert.Equal(t, f.doctor.ID, plan.DoctorID)
	assert.Equal(t, f.clinic.ID, *plan.ClinicID)
	assert.Equal(t, []int{}, []int(plan.TreatedTeeth))
	require.Len(t, plan.Services, 3)
	assert.Equal(t, "Crown", plan.Services[0].ServiceName)
	assert.Equal(t, 16, plan.Services[2].ToothID)
	assert.Equal(t, 15000.0, plan.Services[2].ServicePrice)
	assert.Equal(t, []int{11, 16}, plan.SelectedTeeth)
	assert.ElementsMatch(t, []int64{f.crown.ID, f.filling.ID}, plan.TeethServices[11])
	assert.Equal(t, 15000.0+2*50000+15000, plan.TotalCost)
	assert.Equal(t, f.patient.FullName, *plan.PatientName)
}

func TestCreatePlan_Missing(t *testing.T) {
	f := newPlanFixture(t)

	_, err := f.svc.CreatePlan(context.Background(), f.doctor, model.CreateTreatmentPlanRequest{PatientID: 999})
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)

	_, err = f.svc.CreatePlan(context.Background(), f.doctor, model.CreateTreatmentPlanRequest{
		PatientID: f.patient.ID,
		Services:  []model.TreatmentPlanServiceInput{{ServiceID: 999}},
	})
	assert.Equal(t, "Service not found", apperrors.As(err).Message)
}

func TestUpdatePlan(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t, model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(16)})

	price := 40000.0
	services := []model.TreatmentPlanServiceInput{
		{ServiceID: f.crown.ID, ToothID: tooth(21), ServicePrice: &price},
	}
	updated, err := f.svc.UpdatePlan(context.Background(), plan.ID, model.UpdateTreatmentPlanRequest{
		Notes:            testutil.String("reviewed"),
		TreatedTeeth:     []int{16},
		Services:         &services,
		PatientAllergies: testutil.String("penicillin"),
	})
	require.NoError(t, err)

	assert.Equal(t, "caries", *updated.Diagnosis)
	assert.Equal(t, "reviewed", *updated.Notes)
	assert.Equal(t, []int{16}, []int(updated.TreatedTeeth))
	require.Len(t, updated.Services, 1)
	assert.Equal(t, 21, updated.Services[0].ToothID)
	assert.Equal(t, 40000.0, updated.TotalCost)

	patient, err := f.Repos.Patients.Get(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "penicillin", *patient.Allergies)
	assert.Equal(t, "penicillin", *updated.PatientAllergies)
}

func TestUpdatePlan_KeepsServicesWhenOmitted(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t, model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(16)})

	updated, err := f.svc.UpdatePlan(context.Background(), plan.ID, model.UpdateTreatmentPlanRequest{
		Diagnosis: testutil.String("pulpitis"),
	})
	require.NoError(t, err)
	assert.Len(t, updated.Services, 1)
	assert.Equal(t, "pulpitis", *updated.Diagnosis)
}

func TestUpdateFromOrder(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t, model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(16)})

	res, err := f.svc.UpdateFromOrder(context.Background(), plan.ID, []model.OrderServiceLine{
		{ServiceID: f.filling.ID, ToothNumber: 16},
		{ServiceID: f.crown.ID, ToothNumber: 16},
		{ServiceID: f.crown.ID, ToothNumber: 16},
	})
	require.NoError(t, err)
	assert.Equal(t, msgPlanUpdated, res.Message)
	assert.Equal(t, 1, res.NewServicesAdded)
	assert.Equal(t, plan.ID, res.TreatmentPlanID)

	got, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Len(t, got.Services, 2)

	var added *model.TreatmentPlanService
	for _, s := range got.Services {
		if s.ServiceID == f.crown.ID {
			added = s
		}
	}
	require.NotNil(t, added)
	assert.Equal(t, "Crown", added.ServiceName)
	assert.Equal(t, 50000.0, added.ServicePrice)
	assert.Equal(t, addedFromOrderNote, *added.Notes)

	res, err = f.svc.UpdateFromOrder(context.Background(), plan.ID, []model.OrderServiceLine{
		{ServiceID: f.crown.ID, ToothNumber: 16},
	})
	require.NoError(t, err)
	assert.Zero(t, res.NewServicesAdded)

	_, err = f.svc.UpdateFromOrder(context.Background(), 999, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateFromOrder_UnknownService(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t)

	_, err := f.svc.UpdateFromOrder(context.Background(), plan.ID, []model.OrderServiceLine{
		{ServiceID: 999, ToothNumber: 17},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Service not found", apperrors.As(err).Message)

	got, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Services)
}

func TestCheckServices(t *testing.T) {
	f := newPlanFixture(t)
	require.NoError(t, f.svc.CheckServices(context.Background(), f.filling.ID, f.crown.ID, f.filling.ID))
	require.NoError(t, f.svc.CheckServices(context.Background()))

	err := f.svc.CheckServices(context.Background(), f.filling.ID, 999)
	assert.Equal(t, "Service not found", apperrors.As(err).Message)
}

func TestMergeOrderLines_CreatesPlan(t *testing.T) {
	f := newPlanFixture(t)
	price := 12000.0

	added, err := f.svc.MergeOrderLines(context.Background(), f.patient.ID, f.clinic.ID, f.doctor.ID, []model.OrderServiceLine{
		{ServiceID: f.filling.ID, ToothNumber: 0},
		{ServiceID: f.filling.ID, ToothNumber: 36, ServiceName: "Filling", ServicePrice: &price},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	plans, err := f.svc.ListPatientPlans(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, f.doctor.ID, plans[0].DoctorID)
	require.Len(t, plans[0].Services, 1)
	assert.Equal(t, 12000.0, plans[0].Services[0].ServicePrice)

	added, err = f.svc.MergeOrderLines(context.Background(), f.patient.ID, f.clinic.ID, f.doctor.ID, []model.OrderServiceLine{
		{ServiceID: f.crown.ID, ToothNumber: 36},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	plans, err = f.svc.ListPatientPlans(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, 50000.0, plans[0].Services[1].ServicePrice)
}

func TestMergeOrderLines_NoToothLines(t *testing.T) {
	f := newPlanFixture(t)
	added, err := f.svc.MergeOrderLines(context.Background(), f.patient.ID, f.clinic.ID, f.doctor.ID, []model.OrderServiceLine{
		{ServiceID: f.filling.ID},
	})
	require.NoError(t, err)
	assert.Zero(t, added)

	plans, err := f.svc.ListPatientPlans(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestListPlans_ScopedToClinic(t *testing.T) {
	f := newPlanFixture(t)
	f.plan(t)

	other := f.Clinic(t, "Other")
	otherDoctor := f.User(t, model.RoleDoctor, &other.ID)
	admin := f.User(t, model.RoleAdmin, nil)

	plans, err := f.svc.ListPlans(context.Background(), f.doctor, model.TreatmentPlanFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	plans, err = f.svc.ListPlans(context.Background(), otherDoctor, model.TreatmentPlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans)

	plans, err = f.svc.ListPlans(context.Background(), admin, model.TreatmentPlanFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	nurse := f.User(t, model.RoleNurse, nil)
	_, err = f.svc.ListPlans(context.Background(), nurse, model.TreatmentPlanFilter{})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDeletePlan(t *testing.T) {
	f := newPlanFixture(t)
	plan := f.plan(t, model.TreatmentPlanServiceInput{ServiceID: f.filling.ID, ToothID: tooth(16)})

	require.NoError(t, f.svc.DeletePlan(context.Background(), plan.ID))
	_, err := f.svc.GetPlan(context.Background(), plan.ID)
	assert.Equal(t, "Treatment plan not found", apperrors.As(err).Message)

	lines, err := f.svc.ListPatientServices(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
