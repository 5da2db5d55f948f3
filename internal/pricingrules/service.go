package pricingrules

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// RuleSource loads the pricing configuration snapshot.
type RuleSource interface {
	LoadRuleSet(ctx context.Context) (*RuleSet, error)
}

// Writer mutates pricing configuration records.
type Writer interface {
	CreateDiscountRule(ctx context.Context, req UpsertDiscountRuleRequest) (*DiscountRule, error)
	UpdateDiscountRule(ctx context.Context, id int64, req UpsertDiscountRuleRequest) (*DiscountRule, error)
	DeleteDiscountRule(ctx context.Context, id int64) error
	CreateServiceCombination(ctx context.Context, req UpsertServiceCombinationRequest) (*ServiceCombination, error)
	UpdateServiceCombination(ctx context.Context, id int64, req UpsertServiceCombinationRequest) (*ServiceCombination, error)
	DeleteServiceCombination(ctx context.Context, id int64) error
	CreateBindingOption(ctx context.Context, req UpsertBindingOptionRequest) (*BindingOption, error)
	UpdateBindingOption(ctx context.Context, id int64, req UpsertBindingOptionRequest) (*BindingOption, error)
	DeleteBindingOption(ctx context.Context, id int64) error
}

// Store combines read and write access, implemented by Repository.
type Store interface {
	RuleSource
	Writer
}

// Service exposes quoting and admin CRUD over the pricing configuration.
type Service struct {
	store Store
	cache *Cache
	group singleflight.Group
}

// NewService constructs the service.
func NewService(store Store, cache *Cache) *Service {
	return &Service{store: store, cache: cache}
}

// RuleSet returns the current configuration snapshot. Concurrent loads for a
// cold cache are collapsed into a single repository query.
func (s *Service) RuleSet(ctx context.Context) (*RuleSet, error) {
	result, err, _ := s.group.Do("ruleset", func() (any, error) {
		return s.cache.Fetch(ctx, s.store.LoadRuleSet)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RuleSet), nil
}

// Quote prices the requested print jobs against the active configuration.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	rs, err := s.RuleSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rule set: %w", err)
	}
	return buildQuote(rs, req)
}

func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx)
	s.group.Forget("ruleset")
}

// CreateDiscountRule adds a discount rule and invalidates the snapshot.
func (s *Service) CreateDiscountRule(ctx context.Context, req UpsertDiscountRuleRequest) (*DiscountRule, error) {
	rule, err := s.store.CreateDiscountRule(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rule, nil
}

// UpdateDiscountRule updates a discount rule and invalidates the snapshot.
func (s *Service) UpdateDiscountRule(ctx context.Context, id int64, req UpsertDiscountRuleRequest) (*DiscountRule, error) {
	rule, err := s.store.UpdateDiscountRule(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rule, nil
}

// DeleteDiscountRule removes a discount rule and invalidates the snapshot.
func (s *Service) DeleteDiscountRule(ctx context.Context, id int64) error {
	if err := s.store.DeleteDiscountRule(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateServiceCombination adds a rate and invalidates the snapshot.
func (s *Service) CreateServiceCombination(ctx context.Context, req UpsertServiceCombinationRequest) (*ServiceCombination, error) {
	comb, err := s.store.CreateServiceCombination(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return comb, nil
}

// UpdateServiceCombination updates a rate and invalidates the snapshot.
func (s *Service) UpdateServiceCombination(ctx context.Context, id int64, req UpsertServiceCombinationRequest) (*ServiceCombination, error) {
	comb, err := s.store.UpdateServiceCombination(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return comb, nil
}

// DeleteServiceCombination removes a rate and invalidates the snapshot.
func (s *Service) DeleteServiceCombination(ctx context.Context, id int64) error {
	if err := s.store.DeleteServiceCombination(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateBindingOption adds a binding option and invalidates the snapshot.
func (s *Service) CreateBindingOption(ctx context.Context, req UpsertBindingOptionRequest) (*BindingOption, error) {
	binding, err := s.store.CreateBindingOption(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return binding, nil
}

// UpdateBindingOption updates a binding option and invalidates the snapshot.
func (s *Service) UpdateBindingOption(ctx context.Context, id int64, req UpsertBindingOptionRequest) (*BindingOption, error) {
	binding, err := s.store.UpdateBindingOption(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return binding, nil
}

// DeleteBindingOption removes a binding option and invalidates the snapshot.
func (s *Service) DeleteBindingOption(ctx context.Context, id int64) error {
	if err := s.store.DeleteBindingOption(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
