package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// tripleKey identifies one allocation row.
type tripleKey struct {
	employeeID int
	instanceID string
	activityID int
}

// fakeState is an in-memory stand-in for the database, shared by the fake
// stores below. Mutating operations require holding the employee lock of the
// simulated transaction, mirroring the anchor-lock protocol.
type fakeState struct {
	mu sync.Mutex

	instances     map[string]*models.CourseInstance
	activities    map[int]*models.TeachingActivity
	planned       map[string][]*models.PlannedActivity
	employees     map[int]bool
	employeeNames map[int]string
	salaries      map[int][]*models.SalaryVersion
	allocations   map[tripleKey]*models.Allocation

	ruleLimit int
	ruleSet   bool

	employeeLocks map[int]*sync.Mutex
	nextActivity  int

	// calls records store invocations in order, for lock-order assertions.
	callsMu sync.Mutex
	calls   []string
}

func newFakeState() *fakeState {
	return &fakeState{
		instances:     make(map[string]*models.CourseInstance),
		activities:    make(map[int]*models.TeachingActivity),
		planned:       make(map[string][]*models.PlannedActivity),
		employees:     make(map[int]bool),
		employeeNames: make(map[int]string),
		salaries:      make(map[int][]*models.SalaryVersion),
		allocations:   make(map[tripleKey]*models.Allocation),
		employeeLocks: make(map[int]*sync.Mutex),
		nextActivity:  1,
	}
}

func (st *fakeState) record(call string) {
	st.callsMu.Lock()
	st.calls = append(st.calls, call)
	st.callsMu.Unlock()
}

func (st *fakeState) addInstance(id, code string, year int, period models.StudyPeriod) {
	st.instances[id] = &models.CourseInstance{
		InstanceID:  id,
		CourseCode:  code,
		CourseName:  code + " course",
		StudyYear:   year,
		StudyPeriod: period,
	}
}

func (st *fakeState) addEmployee(id int, rate string) {
	st.employees[id] = true
	st.employeeNames[id] = fmt.Sprintf("Teacher %d", id)
	st.salaries[id] = append(st.salaries[id], &models.SalaryVersion{
		SalaryVersionID: id*100 + len(st.salaries[id]) + 1,
		EmployeeID:      id,
		VersionNo:       len(st.salaries[id]) + 1,
		HourlyRate:      decimal.RequireFromString(rate),
	})
	st.employeeLocks[id] = &sync.Mutex{}
}

func (st *fakeState) addSalaryVersion(employeeID int, rate string) {
	st.salaries[employeeID] = append(st.salaries[employeeID], &models.SalaryVersion{
		SalaryVersionID: employeeID*100 + len(st.salaries[employeeID]) + 1,
		EmployeeID:      employeeID,
		VersionNo:       len(st.salaries[employeeID]) + 1,
		HourlyRate:      decimal.RequireFromString(rate),
	})
}

func (st *fakeState) addActivity(name string, factor string, derived bool) int {
	id := st.nextActivity
	st.nextActivity++
	st.activities[id] = &models.TeachingActivity{
		ActivityID:   id,
		ActivityName: name,
		Factor:       decimal.RequireFromString(factor),
		IsDerived:    derived,
	}
	return id
}

// fakeSession is one simulated transaction: it tracks which employee locks it
// holds so the runner can release them on commit or rollback. It travels in
// the context so concurrent transactions stay independent.
type fakeSession struct {
	held []*sync.Mutex
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *fakeSession {
	session, _ := ctx.Value(sessionKey{}).(*fakeSession)
	return session
}

// fakeRunner satisfies db.TxRunner. Each WithTransaction call gets a fresh
// session whose locks are released when the callback returns, like a real
// commit or rollback would.
type fakeRunner struct{}

func (r *fakeRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	session := &fakeSession{}
	defer func() {
		for i := len(session.held) - 1; i >= 0; i-- {
			session.held[i].Unlock()
		}
	}()
	return fn(context.WithValue(ctx, sessionKey{}, session), pgx.Tx(nil))
}

// fakeStores builds a store bundle backed by the shared state.
func fakeStores(state *fakeState) (*Stores, StoreFactory) {
	build := func(db.Querier) *Stores {
		return &Stores{
			Instances:   &fakeInstanceStore{state: state},
			Activities:  &fakeActivityStore{state: state},
			Allocations: &fakeAllocationStore{state: state},
			Salaries:    &fakeSalaryStore{state: state},
			Rules:       &fakeRuleStore{state: state},
		}
	}
	return build(nil), build
}

type fakeInstanceStore struct {
	state *fakeState
}

func (f *fakeInstanceStore) FindAll(ctx context.Context) ([]*models.CourseInstance, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	out := make([]*models.CourseInstance, 0, len(f.state.instances))
	for _, ci := range f.state.instances {
		copied := *ci
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeInstanceStore) FindByYear(ctx context.Context, year int) ([]*models.CourseInstance, error) {
	all, _ := f.FindAll(ctx)
	out := all[:0]
	for _, ci := range all {
		if ci.StudyYear == year {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (f *fakeInstanceStore) FindByID(ctx context.Context, instanceID string, lock bool) (*models.CourseInstance, error) {
	f.state.record(fmt.Sprintf("instance.FindByID(%s,lock=%v)", instanceID, lock))
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	ci, ok := f.state.instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInstanceNotFound, instanceID)
	}
	copied := *ci
	return &copied, nil
}

func (f *fakeInstanceStore) UpdateStudents(ctx context.Context, instance *models.CourseInstance) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	ci, ok := f.state.instances[instance.InstanceID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrInstanceNotFound, instance.InstanceID)
	}
	ci.NumStudents = instance.NumStudents
	return nil
}

type fakeActivityStore struct {
	state *fakeState
}

func (f *fakeActivityStore) FindAll(ctx context.Context) ([]*models.TeachingActivity, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	out := make([]*models.TeachingActivity, 0, len(f.state.activities))
	for _, a := range f.state.activities {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeActivityStore) FindByID(ctx context.Context, activityID int) (*models.TeachingActivity, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	a, ok := f.state.activities[activityID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrActivityNotFound, activityID)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeActivityStore) FindByName(ctx context.Context, name string) (*models.TeachingActivity, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, a := range f.state.activities {
		if strings.EqualFold(a.ActivityName, name) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrActivityNotFound, name)
}

func (f *fakeActivityStore) Create(ctx context.Context, activity *models.TeachingActivity) (int, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, a := range f.state.activities {
		if a.ActivityName == activity.ActivityName {
			return 0, apperrors.ErrActivityAlreadyExists
		}
	}
	id := f.state.nextActivity
	f.state.nextActivity++
	copied := *activity
	copied.ActivityID = id
	f.state.activities[id] = &copied
	return id, nil
}

func (f *fakeActivityStore) CreatePlanned(ctx context.Context, planned *models.PlannedActivity) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if _, ok := f.state.instances[planned.CourseInstanceID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrInstanceNotFound, planned.CourseInstanceID)
	}
	for _, p := range f.state.planned[planned.CourseInstanceID] {
		if p.ActivityID == planned.ActivityID {
			return apperrors.ErrPlannedActivityExists
		}
	}
	copied := *planned
	f.state.planned[planned.CourseInstanceID] = append(f.state.planned[planned.CourseInstanceID], &copied)
	return nil
}

func (f *fakeActivityStore) SumPlannedEffectiveHours(ctx context.Context, instanceID string) (decimal.Decimal, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	sum := decimal.Zero
	for _, p := range f.state.planned[instanceID] {
		factor := f.state.activities[p.ActivityID].Factor
		sum = sum.Add(p.PlannedHours.Mul(factor))
	}
	return sum, nil
}

type fakeAllocationStore struct {
	state *fakeState
}

func (f *fakeAllocationStore) LockEmployee(ctx context.Context, employeeID int) error {
	f.state.record(fmt.Sprintf("allocation.LockEmployee(%d)", employeeID))
	f.state.mu.Lock()
	if !f.state.employees[employeeID] {
		f.state.mu.Unlock()
		return fmt.Errorf("%w: id %d", apperrors.ErrEmployeeNotFound, employeeID)
	}
	lock := f.state.employeeLocks[employeeID]
	f.state.mu.Unlock()

	// Block like a row lock would until the holding transaction finishes.
	lock.Lock()
	if session := sessionFrom(ctx); session != nil {
		session.held = append(session.held, lock)
	} else {
		lock.Unlock()
	}
	return nil
}

func (f *fakeAllocationStore) FindTriple(ctx context.Context, employeeID int, instanceID string, activityID int) (*models.Allocation, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	a, ok := f.state.allocations[tripleKey{employeeID, instanceID, activityID}]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAllocationStore) Create(ctx context.Context, allocation *models.Allocation) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	key := tripleKey{allocation.EmployeeID, allocation.CourseInstanceID, allocation.ActivityID}
	if _, exists := f.state.allocations[key]; exists {
		return apperrors.ErrDuplicateAllocation
	}
	copied := *allocation
	f.state.allocations[key] = &copied
	return nil
}

func (f *fakeAllocationStore) Reactivate(ctx context.Context, allocation *models.Allocation) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	key := tripleKey{allocation.EmployeeID, allocation.CourseInstanceID, allocation.ActivityID}
	existing, ok := f.state.allocations[key]
	if !ok || !existing.IsTerminated {
		return apperrors.ErrAllocationNotFound
	}
	copied := *allocation
	f.state.allocations[key] = &copied
	return nil
}

func (f *fakeAllocationStore) Terminate(ctx context.Context, employeeID int, instanceID string, activityID int) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	existing, ok := f.state.allocations[tripleKey{employeeID, instanceID, activityID}]
	if !ok || existing.IsTerminated {
		return apperrors.ErrAllocationNotFound
	}
	existing.IsTerminated = true
	return nil
}

func (f *fakeAllocationStore) CountDistinctInstances(ctx context.Context, employeeID int, period models.StudyPeriod, year int) (int, error) {
	f.state.record(fmt.Sprintf("allocation.CountDistinctInstances(%d)", employeeID))
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	seen := make(map[string]bool)
	for key, a := range f.state.allocations {
		if key.employeeID != employeeID || a.IsTerminated {
			continue
		}
		ci := f.state.instances[key.instanceID]
		if ci != nil && ci.StudyPeriod == period && ci.StudyYear == year {
			seen[key.instanceID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeAllocationStore) FindByEmployeePeriod(ctx context.Context, employeeID int, period models.StudyPeriod, year int) ([]*models.Allocation, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var out []*models.Allocation
	for key, a := range f.state.allocations {
		if key.employeeID != employeeID || a.IsTerminated {
			continue
		}
		ci := f.state.instances[key.instanceID]
		if ci != nil && ci.StudyPeriod == period && ci.StudyYear == year {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAllocationStore) FindByInstance(ctx context.Context, instanceID string) ([]*models.Allocation, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var out []*models.Allocation
	for key, a := range f.state.allocations {
		if key.instanceID == instanceID && !a.IsTerminated {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAllocationStore) FindByActivityName(ctx context.Context, activityName string) ([]*models.ActivityTeacherAllocation, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var out []*models.ActivityTeacherAllocation
	for key, a := range f.state.allocations {
		if a.IsTerminated {
			continue
		}
		activity := f.state.activities[key.activityID]
		if activity == nil || !strings.EqualFold(activity.ActivityName, activityName) {
			continue
		}
		ci := f.state.instances[key.instanceID]
		out = append(out, &models.ActivityTeacherAllocation{
			EmployeeID:       key.employeeID,
			TeacherName:      f.state.employeeNames[key.employeeID],
			CourseInstanceID: key.instanceID,
			CourseName:       ci.CourseName,
			ActivityName:     activity.ActivityName,
			AllocatedHours:   a.AllocatedHours,
			StudyYear:        ci.StudyYear,
			StudyPeriod:      ci.StudyPeriod,
		})
	}
	return out, nil
}

func (f *fakeAllocationStore) SumActualCost(ctx context.Context, instanceID string) (decimal.Decimal, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	sum := decimal.Zero
	for key, a := range f.state.allocations {
		if key.instanceID != instanceID || a.IsTerminated {
			continue
		}
		for _, versions := range f.state.salaries {
			for _, v := range versions {
				if v.SalaryVersionID == a.SalaryVersionID {
					sum = sum.Add(a.AllocatedHours.Mul(v.HourlyRate))
				}
			}
		}
	}
	return sum, nil
}

type fakeSalaryStore struct {
	state *fakeState
}

func (f *fakeSalaryStore) FindLatestVersion(ctx context.Context, employeeID int) (*models.SalaryVersion, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	versions := f.state.salaries[employeeID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: employee %d", apperrors.ErrNoSalaryVersion, employeeID)
	}
	latest := versions[0]
	for _, v := range versions[1:] {
		if v.VersionNo > latest.VersionNo {
			latest = v
		}
	}
	copied := *latest
	return &copied, nil
}

type fakeRuleStore struct {
	state *fakeState
}

func (f *fakeRuleStore) FindMaxInstancesPerPeriod(ctx context.Context) (int, bool, error) {
	f.state.record("rule.FindMaxInstancesPerPeriod")
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.state.ruleLimit, f.state.ruleSet, nil
}
