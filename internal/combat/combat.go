// Package combat is the turn-based state machine both clients replicate.
// The server never runs it to resolve anything: the acting client samples
// the randomness, transmits the resolved outcome, and the peer applies it
// verbatim. Consistency rests solely on both replicas consuming the same
// action stream in the same order; there is no reconciliation if they
// diverge.
package combat

import (
	"errors"
	"math/rand"
)

var (
	ErrMatchConcluded = errors.New("match already concluded")
	ErrUnknownAction  = errors.New("unknown action type")
	ErrBadSeat        = errors.New("actor seat must be 1 or 2")
)

type ActionType string

const (
	ActionAttack  ActionType = "attack"
	ActionDefend  ActionType = "defend"
	ActionSpecial ActionType = "special"
)

const MaxHealth = 100

type Fighter struct {
	Health    int  `json:"health"`
	MaxHealth int  `json:"maxHealth"`
	Defending bool `json:"defending"`
}

// State is one replica of the match. Turn and Winner are seat numbers;
// Winner stays 0 until a fighter's health reaches zero.
type State struct {
	P1     Fighter `json:"player1"`
	P2     Fighter `json:"player2"`
	Turn   int     `json:"turn"`
	Winner int     `json:"winner"`
}

func NewState() State {
	return State{
		P1:   Fighter{Health: MaxHealth, MaxHealth: MaxHealth},
		P2:   Fighter{Health: MaxHealth, MaxHealth: MaxHealth},
		Turn: 1,
	}
}

// Action carries a fully resolved outcome. Hit, Damage and NewHealth are
// filled in by the actor's resolver; the peer applies them without
// re-rolling.
type Action struct {
	Type      ActionType `json:"type"`
	Actor     int        `json:"actor"`
	Username  string     `json:"username,omitempty"`
	Hit       bool       `json:"hit"`
	Damage    int        `json:"damage"`
	NewHealth int        `json:"newHealth"`
	NextTurn  int        `json:"nextTurn"`
}

func other(seat int) int {
	if seat == 1 {
		return 2
	}
	return 1
}

func (s *State) fighter(seat int) *Fighter {
	if seat == 1 {
		return &s.P1
	}
	return &s.P2
}

// ResolveAttack rolls a basic attack for the acting seat. Damage is
// uniform in [10,25], halved (floor) when the target is defending.
func ResolveAttack(s State, actor int, rng *rand.Rand) Action {
	target := s.fighter(other(actor))
	damage := rng.Intn(16) + 10
	if target.Defending {
		damage = damage / 2
	}
	newHealth := target.Health - damage
	if newHealth < 0 {
		newHealth = 0
	}
	return Action{
		Type:      ActionAttack,
		Actor:     actor,
		Hit:       true,
		Damage:    damage,
		NewHealth: newHealth,
		NextTurn:  other(actor),
	}
}

// ResolveDefend raises the actor's guard for the next incoming attack.
func ResolveDefend(actor int) Action {
	return Action{
		Type:     ActionDefend,
		Actor:    actor,
		NextTurn: other(actor),
	}
}

// ResolveSpecial rolls the special attack: 60% chance to hit, damage
// uniform in [20,40] on a hit, nothing but a turn pass on a miss.
func ResolveSpecial(s State, actor int, rng *rand.Rand) Action {
	target := s.fighter(other(actor))
	hit := rng.Float64() > 0.4
	damage := 0
	newHealth := target.Health
	if hit {
		damage = rng.Intn(21) + 20
		newHealth = target.Health - damage
		if newHealth < 0 {
			newHealth = 0
		}
	}
	return Action{
		Type:      ActionSpecial,
		Actor:     actor,
		Hit:       hit,
		Damage:    damage,
		NewHealth: newHealth,
		NextTurn:  other(actor),
	}
}

// Apply consumes a resolved action and returns the next state. Both
// replicas run the same Apply over the same stream, so both converge on
// the same winner.
func Apply(s State, a Action) (State, error) {
	if s.Winner != 0 {
		return s, ErrMatchConcluded
	}
	if a.Actor != 1 && a.Actor != 2 {
		return s, ErrBadSeat
	}

	next := s
	switch a.Type {
	case ActionAttack:
		target := next.fighter(other(a.Actor))
		target.Health = a.NewHealth
		target.Defending = false
	case ActionDefend:
		next.fighter(a.Actor).Defending = true
	case ActionSpecial:
		if a.Hit {
			target := next.fighter(other(a.Actor))
			target.Health = a.NewHealth
			target.Defending = false
		}
	default:
		return s, ErrUnknownAction
	}

	next.Turn = a.NextTurn
	if next.fighter(other(a.Actor)).Health <= 0 {
		next.Winner = a.Actor
	}
	return next, nil
}
