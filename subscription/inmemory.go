package subscription

import (
	"context"
	"sync"

	"github.com/nucleusmind/contextengine/errors"
)

// InMemoryService is a simple in-memory implementation
type InMemoryService struct {
	mu       sync.RWMutex
	plans    map[string]*Plan
	settings map[string]*UserSetting
}

var _ Service = (*InMemoryService)(nil)

func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		plans:    make(map[string]*Plan),
		settings: make(map[string]*UserSetting),
	}
}

func (s *InMemoryService) GetActivePlan(ctx context.Context, organizationID string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[organizationID]
	if !ok || plan.Status != PlanStatusActive {
		return nil, errors.Wrapf(errors.ErrNotFound, "no active plan for %s", organizationID)
	}
	return plan, nil
}

func (s *InMemoryService) GetUserSetting(ctx context.Context, organizationID, userID string) (*UserSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	setting, ok := s.settings[organizationID+"/"+userID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no setting for user %s", userID)
	}
	return setting, nil
}

func (s *InMemoryService) SavePlan(ctx context.Context, plan *Plan) error {
	if plan == nil {
		return errors.New("plan cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.OrganizationID] = plan
	return nil
}

func (s *InMemoryService) SaveUserSetting(ctx context.Context, setting *UserSetting) error {
	if setting == nil {
		return errors.New("setting cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[setting.OrganizationID+"/"+setting.UserID] = setting
	return nil
}
