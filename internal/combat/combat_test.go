package combat

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAttackDamageBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("undefended", func(t *testing.T) {
		s := NewState()
		for i := 0; i < 10000; i++ {
			a := ResolveAttack(s, 1, rng)
			if a.Damage < 10 || a.Damage > 25 {
				t.Fatalf("damage %d out of [10,25]", a.Damage)
			}
		}
	})

	t.Run("defending halves with floor", func(t *testing.T) {
		s := NewState()
		s.P2.Defending = true
		for i := 0; i < 10000; i++ {
			a := ResolveAttack(s, 1, rng)
			if a.Damage < 5 || a.Damage > 12 {
				t.Fatalf("defended damage %d out of [5,12]", a.Damage)
			}
		}
	})
}

func TestSpecialHitRateAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s := NewState()

	const trials = 20000
	hits := 0
	for i := 0; i < trials; i++ {
		a := ResolveSpecial(s, 1, rng)
		if a.Hit {
			hits++
			if a.Damage < 20 || a.Damage > 40 {
				t.Fatalf("special damage %d out of [20,40]", a.Damage)
			}
		} else if a.Damage != 0 {
			t.Fatalf("missed special carried damage %d", a.Damage)
		}
	}

	rate := float64(hits) / float64(trials)
	if rate < 0.58 || rate > 0.62 {
		t.Fatalf("special hit rate %.4f, want ~0.60", rate)
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		name    string
		setup   func() State
		action  Action
		check   func(t *testing.T, s State)
		wantErr error
	}{
		{
			name:   "attack applies transmitted health and flips turn",
			setup:  NewState,
			action: Action{Type: ActionAttack, Actor: 2, Hit: true, Damage: 18, NewHealth: 82, NextTurn: 1},
			check: func(t *testing.T, s State) {
				if s.P1.Health != 82 {
					t.Fatalf("p1 health = %d, want 82", s.P1.Health)
				}
				if s.Turn != 1 {
					t.Fatalf("turn = %d, want 1", s.Turn)
				}
			},
		},
		{
			name: "attack clears defending flag",
			setup: func() State {
				s := NewState()
				s.P2.Defending = true
				return s
			},
			action: Action{Type: ActionAttack, Actor: 1, Hit: true, Damage: 7, NewHealth: 93, NextTurn: 2},
			check: func(t *testing.T, s State) {
				if s.P2.Defending {
					t.Fatal("defending flag should clear after an attack lands")
				}
			},
		},
		{
			name:   "defend raises the flag and passes the turn",
			setup:  NewState,
			action: ResolveDefend(1),
			check: func(t *testing.T, s State) {
				if !s.P1.Defending {
					t.Fatal("p1 should be defending")
				}
				if s.Turn != 2 {
					t.Fatalf("turn = %d, want 2", s.Turn)
				}
			},
		},
		{
			name:   "missed special only passes the turn",
			setup:  NewState,
			action: Action{Type: ActionSpecial, Actor: 1, Hit: false, NewHealth: 100, NextTurn: 2},
			check: func(t *testing.T, s State) {
				if s.P2.Health != 100 {
					t.Fatalf("p2 health = %d, want 100", s.P2.Health)
				}
				if s.Turn != 2 {
					t.Fatalf("turn = %d, want 2", s.Turn)
				}
			},
		},
		{
			name:   "win detected at zero health",
			setup:  NewState,
			action: Action{Type: ActionSpecial, Actor: 2, Hit: true, Damage: 40, NewHealth: 0, NextTurn: 1},
			check: func(t *testing.T, s State) {
				if s.Winner != 2 {
					t.Fatalf("winner = %d, want 2", s.Winner)
				}
			},
		},
		{
			name: "concluded match rejects further actions",
			setup: func() State {
				s := NewState()
				s.Winner = 1
				return s
			},
			action:  ResolveDefend(2),
			wantErr: ErrMatchConcluded,
		},
		{
			name:    "unknown action type",
			setup:   NewState,
			action:  Action{Type: "dance", Actor: 1, NextTurn: 2},
			wantErr: ErrUnknownAction,
		},
		{
			name:    "invalid seat",
			setup:   NewState,
			action:  Action{Type: ActionAttack, Actor: 3, NextTurn: 1},
			wantErr: ErrBadSeat,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.setup(), tc.action)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			tc.check(t, got)
		})
	}
}

// Two replicas fed the same resolved action stream must converge on the
// same health values and the same winner.
func TestReplicasConverge(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	local := NewState()
	remote := NewState()

	for local.Winner == 0 {
		actor := local.Turn
		var action Action
		switch rng.Intn(3) {
		case 0:
			action = ResolveAttack(local, actor, rng)
		case 1:
			action = ResolveDefend(actor)
		case 2:
			action = ResolveSpecial(local, actor, rng)
		}

		var err error
		local, err = Apply(local, action)
		if err != nil {
			t.Fatalf("local apply: %v", err)
		}
		remote, err = Apply(remote, action)
		if err != nil {
			t.Fatalf("remote apply: %v", err)
		}
	}

	if local != remote {
		t.Fatalf("replicas diverged:\nlocal  %+v\nremote %+v", local, remote)
	}
	if remote.Winner == 0 {
		t.Fatal("remote replica missed the win condition")
	}
	loser := remote.fighter(other(remote.Winner))
	if loser.Health > 0 {
		t.Fatalf("loser health %d, want <= 0", loser.Health)
	}
}

func TestRepeatedAttacksReachZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewState()

	for i := 0; i < 100 && s.Winner == 0; i++ {
		action := ResolveAttack(s, s.Turn, rng)
		var err error
		s, err = Apply(s, action)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if s.Winner == 0 {
		t.Fatal("no winner after 100 attacks")
	}
	winner := s.fighter(s.Winner)
	if winner.Health <= 0 {
		t.Fatalf("winner health %d, want > 0", winner.Health)
	}
}
