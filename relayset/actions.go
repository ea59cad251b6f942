package relayset

import "github.com/bangzek/k8090"

// Actions holds the channels each action of one invocation applies to.
type Actions struct {
	On     k8090.Mask
	Off    k8090.Mask
	Toggle k8090.Mask
	Cycle  k8090.Mask
	Status k8090.Mask
}

// Resolve makes On, Off, Toggle and Cycle disjoint. Off beats Cycle and On,
// Cycle beats On, Toggle beats all three. Status is left alone.
func (a Actions) Resolve() Actions {
	a.Cycle &^= a.Off
	a.On &^= a.Off
	a.On &^= a.Cycle
	a.On &^= a.Toggle
	a.Off &^= a.Toggle
	a.Cycle &^= a.Toggle
	return a
}

func (a Actions) IsZero() bool {
	return a == Actions{}
}
