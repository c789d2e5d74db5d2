package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// Factory builds a fresh, unshared indicator instance. The engine calls it
// once per instrument series so rolling state never leaks across instruments.
type Factory func() Indicator

// IndicatorRegistry manages the available indicator factories. It is
// constructed once at startup and passed by reference into the feature
// engine; there is no package-level registry.
type IndicatorRegistry interface {
	RegisterIndicator(name types.IndicatorType, factory Factory) error
	GetIndicator(name types.IndicatorType) (Factory, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 manages the available indicator factories.
type IndicatorRegistryV1 struct {
	factories map[types.IndicatorType]Factory
	order     []types.IndicatorType
	mu        sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		factories: make(map[types.IndicatorType]Factory),
		order:     nil,
		mu:        sync.RWMutex{},
	}
}

// NewDefaultIndicatorRegistry creates a registry with the full default
// indicator set registered.
func NewDefaultIndicatorRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	// Registration order fixes the column computation order.
	_ = registry.RegisterIndicator(types.IndicatorTypeMovingAverages, func() Indicator { return NewMovingAverages() })
	_ = registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() })
	_ = registry.RegisterIndicator(types.IndicatorTypeMACD, func() Indicator { return NewMACD() })
	_ = registry.RegisterIndicator(types.IndicatorTypeBollingerBands, func() Indicator { return NewBollingerBands() })
	_ = registry.RegisterIndicator(types.IndicatorTypeATR, func() Indicator { return NewATR() })
	_ = registry.RegisterIndicator(types.IndicatorTypeVWAP, func() Indicator { return NewVWAP() })
	_ = registry.RegisterIndicator(types.IndicatorTypeOBV, func() Indicator { return NewOBV() })
	_ = registry.RegisterIndicator(types.IndicatorTypeStochastic, func() Indicator { return NewStochastic() })
	_ = registry.RegisterIndicator(types.IndicatorTypeWilliamsR, func() Indicator { return NewWilliamsR() })
	_ = registry.RegisterIndicator(types.IndicatorTypeCCI, func() Indicator { return NewCCI() })
	_ = registry.RegisterIndicator(types.IndicatorTypeMFI, func() Indicator { return NewMFI() })
	_ = registry.RegisterIndicator(types.IndicatorTypeTimeCycle, func() Indicator { return NewTimeCycle() })

	return registry
}

// RegisterIndicator adds an indicator factory to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(name types.IndicatorType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.factories[name] = factory
	r.order = append(r.order, name)

	return nil
}

// GetIndicator retrieves an indicator factory by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetIndicator: indicator with name %s not found", name)
	}

	return factory, nil
}

// ListIndicators returns all registered indicator names in registration order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, len(r.order))
	copy(names, r.order)

	return names
}

// RemoveIndicator removes an indicator factory from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.factories, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}
