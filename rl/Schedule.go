package rl

import "math"

// Schedule maps an (episode, step) pair to a hyperparameter value.
// The learning rate and discount of an ActorCritic are schedules so
// that annealing over episodes needs no changes to the learner.
type Schedule func(episode, step int) float64

// Const returns a Schedule holding a fixed value
func Const(value float64) Schedule {
	return func(episode, step int) float64 {
		return value
	}
}

// ExponentialDecay returns a Schedule decaying per episode:
// value = initial * rate^episode. A rate of 1 is equivalent to Const.
func ExponentialDecay(initial, rate float64) Schedule {
	return func(episode, step int) float64 {
		return initial * math.Pow(rate, float64(episode))
	}
}

// LinearAnneal returns a Schedule interpolating from initial to final
// over the first steps control steps of an episode, holding final
// afterwards
func LinearAnneal(initial, final float64, steps int) Schedule {
	return func(episode, step int) float64 {
		if step >= steps {
			return final
		}
		frac := float64(step) / float64(steps)
		return initial + (final-initial)*frac
	}
}
