package agents

import (
	"testing"

	"github.com/talgya/skirmish/internal/world"
)

func at(x, y int) world.Cell { return world.Cell{X: x, Y: y} }

func checkHits(t *testing.T, a *Agent) {
	t.Helper()
	sum := 0
	for _, p := range a.Body {
		sum += p.Hits
	}
	if a.Hits != sum {
		t.Fatalf("hits=%d, sum of parts=%d", a.Hits, sum)
	}
	if a.IsAlive() != (a.Hits > 0) {
		t.Fatalf("IsAlive=%v with hits=%d", a.IsAlive(), a.Hits)
	}
}

func TestApplyDamage_FrontToBack(t *testing.T) {
	for parts := 1; parts <= 4; parts++ {
		for dmg := 0; dmg <= parts*MaxPartHits+50; dmg += 17 {
			a := New("a", "a", TeamFriendly, at(0, 0), make([]PartKind, parts))
			a.ApplyDamage(dmg)
			checkHits(t, a)

			left := dmg
			for i, p := range a.Body {
				want := MaxPartHits - left
				if want < 0 {
					want = 0
				}
				if want > MaxPartHits {
					want = MaxPartHits
				}
				if p.Hits != want {
					t.Fatalf("parts=%d dmg=%d: part %d hits=%d, want %d", parts, dmg, i, p.Hits, want)
				}
				left -= MaxPartHits
				if left < 0 {
					left = 0
				}
			}
			if a.DamageTaken != dmg {
				t.Fatalf("damageTaken=%d, want %d", a.DamageTaken, dmg)
			}
		}
	}
}

func TestApplyDamage_ExcessStillCounted(t *testing.T) {
	a := New("a", "a", TeamFriendly, at(0, 0), []PartKind{PartTough})
	a.ApplyDamage(250)
	checkHits(t, a)
	if a.IsAlive() {
		t.Fatal("agent should be dead")
	}
	if a.DamageTaken != 250 {
		t.Fatalf("damageTaken=%d, want 250", a.DamageTaken)
	}
}

func TestApplyHealing_CapsPerPart(t *testing.T) {
	a := New("a", "a", TeamFriendly, at(0, 0), []PartKind{PartTough, PartMove, PartHeal})
	a.ApplyDamage(150)
	a.ApplyHealing(120)
	checkHits(t, a)
	if a.Body[0].Hits != 100 || a.Body[1].Hits != 70 || a.Body[2].Hits != 100 {
		t.Fatalf("unexpected body after heal: %+v", a.Body)
	}
	if a.HealingReceived != 120 {
		t.Fatalf("healingReceived=%d, want 120", a.HealingReceived)
	}
}

func TestActiveParts_IgnoresDestroyed(t *testing.T) {
	a := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("attack:2,move"))
	if n := a.ActiveParts(PartAttack); n != 2 {
		t.Fatalf("active attack=%d, want 2", n)
	}
	a.ApplyDamage(100)
	if n := a.ActiveParts(PartAttack); n != 1 {
		t.Fatalf("active attack after losing one=%d, want 1", n)
	}
}

func TestAttack_Statuses(t *testing.T) {
	attacker := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("attack,move"))
	target := New("t", "t", TeamEnemy, at(1, 1), MustLoadout("tough"))
	far := New("f", "f", TeamEnemy, at(2, 0), MustLoadout("tough"))
	dead := New("d", "d", TeamEnemy, at(0, 1), MustLoadout("tough"))
	dead.ApplyDamage(100)
	unarmed := New("u", "u", TeamFriendly, at(1, 0), MustLoadout("move"))

	cases := []struct {
		name   string
		from   *Agent
		target *Agent
		want   Status
	}{
		{"nil target", attacker, nil, StatusInvalidTarget},
		{"dead target", attacker, dead, StatusInvalidTarget},
		{"out of range", attacker, far, StatusOutOfRange},
		{"no attack part", unarmed, target, StatusMissingBodyPart},
		{"ok", attacker, target, StatusOK},
	}
	for _, tc := range cases {
		if got := Attack(tc.from, tc.target); got != tc.want {
			t.Errorf("%s: status=%v, want %v", tc.name, got, tc.want)
		}
	}
	if target.Hits != 100-AttackPower {
		t.Fatalf("target hits=%d, want %d", target.Hits, 100-AttackPower)
	}
	if attacker.DamageDealt != AttackPower {
		t.Fatalf("damageDealt=%d, want %d", attacker.DamageDealt, AttackPower)
	}
}

func TestRangedAttack_Falloff(t *testing.T) {
	want := map[int]int{0: 20, 1: 20, 2: 8, 3: 2}
	for r, dmg := range want {
		a := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("ranged_attack:2"))
		target := New("t", "t", TeamEnemy, at(r, 0), MustLoadout("tough:3"))
		if st := RangedAttack(a, target); st != StatusOK {
			t.Fatalf("range %d: status=%v", r, st)
		}
		if got := target.DamageTaken; got != dmg {
			t.Errorf("range %d: damage=%d, want %d", r, got, dmg)
		}
	}

	a := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("ranged_attack"))
	target := New("t", "t", TeamEnemy, at(4, 0), MustLoadout("tough"))
	if st := RangedAttack(a, target); st != StatusOutOfRange {
		t.Fatalf("range 4: status=%v, want out_of_range", st)
	}
	if f := RangedFalloff(4); f != 0 {
		t.Fatalf("falloff(4)=%v, want 0", f)
	}
	if f := RangedFalloff(2); f != 0.4 {
		t.Fatalf("falloff(2)=%v, want 0.4", f)
	}
}

func TestHeal_AdjacentAndRanged(t *testing.T) {
	medic := New("m", "m", TeamFriendly, at(0, 0), MustLoadout("heal:2"))
	ally := New("x", "x", TeamFriendly, at(3, 0), MustLoadout("tough:2"))
	ally.ApplyDamage(100)

	if st := Heal(medic, ally); st != StatusOutOfRange {
		t.Fatalf("heal at range 3: status=%v, want out_of_range", st)
	}
	if st := RangedHeal(medic, ally); st != StatusOK {
		t.Fatalf("ranged heal: status=%v", st)
	}
	if ally.Hits != 100+2*RangedHealPower {
		t.Fatalf("ally hits=%d", ally.Hits)
	}
	ally.Pos = at(1, 1)
	if st := Heal(medic, ally); st != StatusOK {
		t.Fatalf("heal: status=%v", st)
	}
	if medic.HealingDone != 2*RangedHealPower+2*HealPower {
		t.Fatalf("healingDone=%d", medic.HealingDone)
	}
}

func TestReduceFatigue(t *testing.T) {
	a := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("move:2,tough"))
	a.Fatigue = 10
	a.ReduceFatigue()
	if a.Fatigue != 6 {
		t.Fatalf("fatigue=%d, want 6", a.Fatigue)
	}
	a.Fatigue = 3
	a.ReduceFatigue()
	if a.Fatigue != 0 {
		t.Fatalf("fatigue=%d, want 0", a.Fatigue)
	}
}

func TestStepCandidates_Order(t *testing.T) {
	got := StepCandidates(1, 1)
	want := []world.Cell{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}
	if len(got) != len(want) {
		t.Fatalf("candidates=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d=%v, want %v", i, got[i], want[i])
		}
	}
}

func TestMoveTo_PriorityAndFatigue(t *testing.T) {
	m := world.NewMap(10, 10)
	a := New("a", "a", TeamFriendly, at(5, 5), MustLoadout("move"))
	occ := NewOccupancy()

	if st := MoveTo(a, at(8, 8), m, occ); st != StatusOK {
		t.Fatalf("status=%v", st)
	}
	if a.Pos != at(6, 6) {
		t.Fatalf("pos=%v, want diagonal (6,6)", a.Pos)
	}
	if a.Fatigue != world.CostPlain {
		t.Fatalf("fatigue=%d, want %d", a.Fatigue, world.CostPlain)
	}
	if st := MoveTo(a, at(8, 8), m, occ); st != StatusOutOfRange {
		t.Fatalf("fatigued move status=%v, want out_of_range", st)
	}

	// Block the diagonal with a wall and the horizontal step with an agent.
	a.Fatigue = 0
	m.Set(7, 7, world.TerrainWall)
	m.Set(6, 7, world.TerrainSwamp)
	blocker := New("b", "b", TeamEnemy, at(7, 6), MustLoadout("tough"))
	occ.Rebuild([]*Agent{a, blocker})
	if st := MoveTo(a, at(8, 8), m, occ); st != StatusOK {
		t.Fatalf("status=%v", st)
	}
	if a.Pos != at(6, 7) {
		t.Fatalf("pos=%v, want vertical step (6,7)", a.Pos)
	}
	if a.Fatigue != world.CostSwamp {
		t.Fatalf("fatigue=%d, want swamp cost %d", a.Fatigue, world.CostSwamp)
	}
}

func TestMoveTo_Blocked(t *testing.T) {
	m := world.NewMap(3, 1)
	a := New("a", "a", TeamFriendly, at(1, 0), MustLoadout("move"))
	left := New("l", "l", TeamFriendly, at(0, 0), MustLoadout("move"))
	right := New("r", "r", TeamEnemy, at(2, 0), MustLoadout("move"))
	occ := NewOccupancy()
	occ.Rebuild([]*Agent{a, left, right})

	if st := MoveTo(a, at(2, 0), m, occ); st != StatusBlocked {
		t.Fatalf("status=%v, want blocked", st)
	}
	if a.Pos != at(1, 0) || a.Fatigue != 0 {
		t.Fatalf("blocked agent moved: pos=%v fatigue=%d", a.Pos, a.Fatigue)
	}
}

func TestOccupancy_ExcludesSelfAndDead(t *testing.T) {
	a := New("a", "a", TeamFriendly, at(0, 0), MustLoadout("move"))
	d := New("d", "d", TeamEnemy, at(1, 0), MustLoadout("move"))
	d.ApplyDamage(100)
	occ := NewOccupancy()
	occ.Rebuild([]*Agent{a, d})

	if occ.Occupied(at(0, 0), a) {
		t.Fatal("own cell reported occupied")
	}
	if !occ.Occupied(at(0, 0), d) {
		t.Fatal("cell should be occupied for others")
	}
	if occ.Occupied(at(1, 0), a) {
		t.Fatal("dead agent should not occupy its cell")
	}
	if occ.At(at(0, 0)) != a || occ.At(at(1, 0)) != nil {
		t.Fatalf("At: %v %v", occ.At(at(0, 0)), occ.At(at(1, 0)))
	}
	if occ.Rebuilds() != 1 || occ.Len() != 1 {
		t.Fatalf("rebuilds=%d len=%d", occ.Rebuilds(), occ.Len())
	}
}

func TestParseLoadout(t *testing.T) {
	parts, err := ParseLoadout("tough, move:2 ,ranged_attack")
	if err != nil {
		t.Fatal(err)
	}
	want := []PartKind{PartTough, PartMove, PartMove, PartRangedAttack}
	if len(parts) != len(want) {
		t.Fatalf("parts=%v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("part %d=%v, want %v", i, parts[i], want[i])
		}
	}
	for _, bad := range []string{"", "laser", "move:x", "move:-1"} {
		if _, err := ParseLoadout(bad); err == nil {
			t.Errorf("ParseLoadout(%q) should fail", bad)
		}
	}
}

func TestSpawner_SequentialIDs(t *testing.T) {
	s := NewSpawner()
	f1 := s.Spawn(TeamFriendly, "", at(0, 0), MustLoadout("move"))
	e1 := s.Spawn(TeamEnemy, "brute", at(1, 0), MustLoadout("attack"))
	f2 := s.Spawn(TeamFriendly, "", at(0, 1), MustLoadout("move"))
	if f1.ID != "f1" || f2.ID != "f2" || e1.ID != "e1" {
		t.Fatalf("ids %s %s %s", f1.ID, f2.ID, e1.ID)
	}
	if e1.Name != "brute" || f1.Name != "f1" {
		t.Fatalf("names %q %q", e1.Name, f1.Name)
	}
	if e1.HitsMax != MaxPartHits || e1.Hits != MaxPartHits {
		t.Fatalf("hits %d/%d", e1.Hits, e1.HitsMax)
	}
	s.Reset()
	if again := s.Spawn(TeamFriendly, "", at(0, 0), nil); again.ID != "f1" {
		t.Fatalf("id after reset=%s", again.ID)
	}
}
