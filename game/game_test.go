package game

import (
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"snake-arena/game/entity"
	"snake-arena/game/types"
)

type drawCall struct {
	Pos   types.Position
	Color types.Color
}

type scoreUpdate struct {
	Owner types.ClientID
	Score int
}

// recordingRenderer keeps the last presented frame and counts calls.
type recordingRenderer struct {
	mu      sync.Mutex
	grid    types.Grid
	pending []drawCall
	frame   []drawCall
	clears  int
	renders int
	resets  int
	scores  []scoreUpdate
}

func newRecorder(w, h int) *recordingRenderer {
	return &recordingRenderer{grid: types.Grid{Width: w, Height: h}}
}

func (r *recordingRenderer) Container() types.Grid {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grid
}

func (r *recordingRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.pending = nil
}

func (r *recordingRenderer) Draw(pos types.Position, color types.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, drawCall{pos, color})
}

func (r *recordingRenderer) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	r.frame = r.pending
}

func (r *recordingRenderer) ResetScore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recordingRenderer) UpdateScore(owner types.ClientID, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, scoreUpdate{owner, score})
}

func (r *recordingRenderer) drawnAt(p types.Position) (types.Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.frame {
		if c.Pos == p {
			return c.Color, true
		}
	}
	return types.Color{}, false
}

func (r *recordingRenderer) renderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

func newTestWorld(t *testing.T, w, h int) (*World, *recordingRenderer) {
	t.Helper()
	rec := newRecorder(w, h)
	world := NewWorld(DefaultConfig(), rec, rec, rand.New(rand.NewSource(7)), zerolog.Nop())
	return world, rec
}

// place puts client's snake at an exact spot, heading dir.
func place(t *testing.T, w *World, client types.ClientID, head types.Position, dir types.Direction, length int) *entity.Snake {
	t.Helper()
	s, ok := w.popMgr.Get(client)
	if !ok {
		t.Fatalf("Expected %s to have a snake", client)
	}
	s.Place(head, dir, length)
	return s
}

func TestJoinCreatesSnake(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)

	if !w.Join("a") {
		t.Fatal("Expected join to succeed")
	}
	s, _ := w.popMgr.Get("a")
	if s.Len() != types.DefaultInitialLength {
		t.Errorf("Expected initial length %d, got %d", types.DefaultInitialLength, s.Len())
	}
	for _, seg := range s.Segments() {
		if !(types.Grid{Width: 20, Height: 20}).Contains(seg) {
			t.Errorf("Expected spawn inside the playfield, got %v", seg)
		}
	}

	found := false
	for _, c := range types.DefaultSnakePalette {
		if c == s.Color {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected palette color, got %v", s.Color)
	}
}

func TestDuplicateJoinIgnored(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)
	w.Join("a")
	before, _ := w.popMgr.Get("a")

	if w.Join("a") {
		t.Error("Expected duplicate join to be refused")
	}
	after, _ := w.popMgr.Get("a")
	if w.Len() != 1 || before != after {
		t.Errorf("Expected the original snake to be kept, got %d snakes", w.Len())
	}
}

func TestJoinsDoNotOverlap(t *testing.T) {
	w, _ := newTestWorld(t, 12, 8)
	for i := 0; i < 5; i++ {
		w.Join(types.NewClientID())
	}
	snap := w.Snapshot()
	seen := make(map[types.Position]bool)
	for _, v := range snap.Snakes {
		for _, seg := range v.Segments {
			if seen[seg] {
				t.Fatalf("Expected no shared cells, %v used twice", seg)
			}
			seen[seg] = true
		}
	}
}

func TestLeave(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)
	var removed []string
	w.OnRemove(func(owner types.ClientID, reason string, score int) {
		removed = append(removed, string(owner)+":"+reason)
	})

	w.Join("a")
	if w.Leave("nobody") {
		t.Error("Expected leave of unknown client to be a no-op")
	}
	if !w.Leave("a") {
		t.Fatal("Expected leave to remove a")
	}
	if w.Leave("a") {
		t.Error("Expected second leave to be a no-op")
	}
	if w.Len() != 0 {
		t.Errorf("Expected empty world, got %d", w.Len())
	}
	if !reflect.DeepEqual(removed, []string{"a:left"}) {
		t.Errorf("Expected one teardown, got %v", removed)
	}
}

func TestJoinThenLeaveDrawsNothing(t *testing.T) {
	w, rec := newTestWorld(t, 20, 20)
	w.Join("a")
	w.Leave("a")
	w.Tick()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.frame) != 0 {
		t.Errorf("Expected an empty frame, got %v", rec.frame)
	}
}

func TestChangeDirection(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)
	w.Join("a")
	s := place(t, w, "a", types.Position{X: 5, Y: 5}, types.Right, 3)

	if w.ChangeDirection("a", "left") {
		t.Error("Expected reversal to be ignored")
	}
	if w.ChangeDirection("a", "jump") {
		t.Error("Expected unknown key to be ignored")
	}
	if w.ChangeDirection("ghost", "up") {
		t.Error("Expected unknown client to be ignored")
	}
	if !w.ChangeDirection("a", "up") {
		t.Fatal("Expected up to be accepted")
	}
	w.Tick()
	if s.GetHead() != (types.Position{X: 5, Y: 4}) {
		t.Errorf("Expected head at (5,4), got %v", s.GetHead())
	}
}

// Snake of length 3 heading right at (5,5)-(4,5)-(3,5), food at (6,5).
func TestTickEatsFood(t *testing.T) {
	w, rec := newTestWorld(t, 10, 10)
	w.Join("a")
	s := place(t, w, "a", types.Position{X: 5, Y: 5}, types.Right, 3)
	w.foodMgr.AddFood(entity.NewFood(types.Position{X: 6, Y: 5}, types.Color{R: 9}))

	w.Tick()

	want := []types.Position{{X: 6, Y: 5}, {X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}}
	if got := s.Segments(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected segments %v, got %v", want, got)
	}
	if s.Score() != types.DefaultFoodValue {
		t.Errorf("Expected score %d, got %d", types.DefaultFoodValue, s.Score())
	}
	food := w.foodMgr.GetFoodList()
	if len(food) != 1 {
		t.Fatalf("Expected eaten food to be replaced by one new item, got %d", len(food))
	}
	if food[0].Position == (types.Position{X: 6, Y: 5}) || s.IsAt(food[0].Position) {
		t.Errorf("Expected new food off the snake, got %v", food[0].Position)
	}
	wantScores := []scoreUpdate{{"a", 0}, {"a", types.DefaultFoodValue}}
	if !reflect.DeepEqual(rec.scores, wantScores) {
		t.Errorf("Expected join and eat updates %v, got %v", wantScores, rec.scores)
	}
}

// Head at (9,5) heading right on a 10-wide board leaves the grid.
func TestTickWallRemoval(t *testing.T) {
	w, rec := newTestWorld(t, 10, 10)
	var reasons []string
	w.OnRemove(func(_ types.ClientID, reason string, _ int) { reasons = append(reasons, reason) })

	w.Join("a")
	place(t, w, "a", types.Position{X: 9, Y: 5}, types.Right, 3)

	w.Tick()

	if w.Len() != 0 {
		t.Fatalf("Expected snake to be removed, %d left", w.Len())
	}
	if !reflect.DeepEqual(reasons, []string{"wall"}) {
		t.Errorf("Expected wall teardown, got %v", reasons)
	}
	for _, p := range []types.Position{{X: 10, Y: 5}, {X: 9, Y: 5}, {X: 8, Y: 5}} {
		if _, drawn := rec.drawnAt(p); drawn {
			t.Errorf("Expected nothing drawn for the removed snake at %v", p)
		}
	}
}

func TestTickChainedCollisions(t *testing.T) {
	w, _ := newTestWorld(t, 30, 30)
	for _, id := range []types.ClientID{"a", "b", "c"} {
		w.Join(id)
	}
	// After one move: c = (11..8,10); b's head lands on (8,10); a's head on (8,11)
	place(t, w, "c", types.Position{X: 10, Y: 10}, types.Right, 4)
	place(t, w, "b", types.Position{X: 8, Y: 11}, types.Up, 3)
	place(t, w, "a", types.Position{X: 9, Y: 11}, types.Left, 1)

	w.Tick()

	snap := w.Snapshot()
	if len(snap.Snakes) != 1 || snap.Snakes[0].Owner != "c" {
		t.Errorf("Expected only c to survive, got %+v", snap.Snakes)
	}
}

func TestTickRendersHeadColor(t *testing.T) {
	w, rec := newTestWorld(t, 20, 20)
	w.Join("a")
	s := place(t, w, "a", types.Position{X: 5, Y: 5}, types.Right, 3)

	w.Tick()

	head, ok := rec.drawnAt(types.Position{X: 6, Y: 5})
	if !ok || head != types.HeadColor {
		t.Errorf("Expected head drawn in head color, got %v (drawn=%v)", head, ok)
	}
	body, ok := rec.drawnAt(types.Position{X: 5, Y: 5})
	if !ok || body != s.Color {
		t.Errorf("Expected body drawn in %v, got %v (drawn=%v)", s.Color, body, ok)
	}
	if rec.clears != 1 || rec.renders != 1 {
		t.Errorf("Expected one clear and one render, got %d/%d", rec.clears, rec.renders)
	}
}

// Each snake's updates carry its owner, so a display can follow one snake.
func TestScoreUpdatesNameTheOwner(t *testing.T) {
	w, rec := newTestWorld(t, 20, 20)
	w.Join("local")
	w.Join("bot")
	place(t, w, "local", types.Position{X: 5, Y: 5}, types.Right, 3)
	place(t, w, "bot", types.Position{X: 5, Y: 10}, types.Right, 3)

	for x := 6; x <= 8; x++ {
		w.foodMgr.AddFood(entity.NewFood(types.Position{X: x, Y: 5}, types.Color{}))
	}
	w.foodMgr.AddFood(entity.NewFood(types.Position{X: 9, Y: 10}, types.Color{}))
	for i := 0; i < 4; i++ {
		w.Tick()
	}

	want := []scoreUpdate{{"local", 0}, {"bot", 0}, {"local", 1}, {"local", 2}, {"local", 3}, {"bot", 1}}
	if !reflect.DeepEqual(rec.scores, want) {
		t.Fatalf("Expected updates %v, got %v", want, rec.scores)
	}

	last := map[types.ClientID]int{}
	for _, u := range rec.scores {
		last[u.Owner] = u.Score
	}
	if last["local"] != 3 || last["bot"] != 1 {
		t.Errorf("Expected local 3 and bot 1, got %v", last)
	}
	if snap := w.Snapshot(); snap.Leader != 3 || snap.HighScore != 3 {
		t.Errorf("Expected leader and high score 3, got %d/%d", snap.Leader, snap.HighScore)
	}
}

// Moving and rendering happen in the same tick: the frame shows the
// post-move body, never the previous position.
func TestTickRendersPostMoveFrame(t *testing.T) {
	w, rec := newTestWorld(t, 20, 20)
	w.Join("a")
	place(t, w, "a", types.Position{X: 5, Y: 5}, types.Right, 3)
	// Meets the food target so nothing spawns near the snake
	w.foodMgr.AddFood(entity.NewFood(types.Position{X: 15, Y: 15}, types.Color{}))

	w.Tick()

	for _, p := range []types.Position{{X: 6, Y: 5}, {X: 5, Y: 5}, {X: 4, Y: 5}} {
		if _, ok := rec.drawnAt(p); !ok {
			t.Errorf("Expected a segment drawn at %v", p)
		}
	}
	if _, ok := rec.drawnAt(types.Position{X: 3, Y: 5}); ok {
		t.Error("Expected the vacated tail cell (3,5) to be blank")
	}
	if snap := w.Snapshot(); snap.Snakes[0].Head() != (types.Position{X: 6, Y: 5}) {
		t.Errorf("Expected snapshot head (6,5), got %v", snap.Snakes[0].Head())
	}
}

// Shrinking the container must not leave the target met by unreachable food.
func TestFoodRespawnsAfterShrink(t *testing.T) {
	w, rec := newTestWorld(t, 40, 20)
	w.Join("a")
	place(t, w, "a", types.Position{X: 5, Y: 5}, types.Down, 3)
	w.foodMgr.AddFood(entity.NewFood(types.Position{X: 30, Y: 10}, types.Color{}))

	rec.mu.Lock()
	rec.grid = types.Grid{Width: 20, Height: 20}
	rec.mu.Unlock()

	if snap := w.Snapshot(); len(snap.Food) != 0 {
		t.Errorf("Expected off-board food hidden from snapshots, got %v", snap.Food)
	}

	for i := 0; i < 5; i++ {
		w.Tick()
	}

	snap := w.Snapshot()
	if len(snap.Snakes) != 1 {
		t.Fatalf("Expected the snake to survive, got %d", len(snap.Snakes))
	}
	if len(snap.Food) != 1 || snap.Food[0].X >= 20 {
		t.Errorf("Expected one in-bounds food item, got %v", snap.Food)
	}
	if _, drawn := rec.drawnAt(types.Position{X: 30, Y: 10}); drawn {
		t.Error("Expected off-board food not to be drawn")
	}
}

func TestFoodTargetTracksPlayers(t *testing.T) {
	w, _ := newTestWorld(t, 40, 20)
	for i := 0; i < 5; i++ {
		id := types.NewClientID()
		w.Join(id)
		place(t, w, id, types.Position{X: 5, Y: 2 + 2*i}, types.Right, 3)
	}
	w.Tick()
	if got := len(w.Snapshot().Food); got != 3 {
		t.Fatalf("Expected 3 food for 5 snakes, got %d", got)
	}

	// Players leaving never despawns food
	for _, v := range w.Snapshot().Snakes {
		w.Leave(v.Owner)
	}
	w.Tick()
	if got := len(w.Snapshot().Food); got != 3 {
		t.Errorf("Expected food to stay at 3, got %d", got)
	}
}

func TestResetReplacesSnakes(t *testing.T) {
	w, rec := newTestWorld(t, 20, 20)
	w.Join("a")
	s := place(t, w, "a", types.Position{X: 5, Y: 5}, types.Right, 3)
	w.foodMgr.AddFood(entity.NewFood(types.Position{X: 6, Y: 5}, types.Color{}))
	w.Tick()
	if s.Score() == 0 {
		t.Fatal("Expected a score before reset")
	}

	w.Reset()

	if s.Score() != 0 || s.Len() != types.DefaultInitialLength {
		t.Errorf("Expected fresh snake, got score %d len %d", s.Score(), s.Len())
	}
	if s.Direction() != types.Right {
		t.Errorf("Expected heading right, got %v", s.Direction())
	}
	if n := len(w.Snapshot().Food); n != 0 {
		t.Errorf("Expected food cleared, got %d", n)
	}
	if rec.resets != 1 {
		t.Errorf("Expected one score reset, got %d", rec.resets)
	}
}

func TestClearTearsDownOnce(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)
	count := 0
	w.OnRemove(func(types.ClientID, string, int) { count++ })
	w.Join("a")
	w.Join("b")

	w.Clear()
	w.Clear()

	if count != 2 || w.Len() != 0 {
		t.Errorf("Expected 2 teardowns and no snakes, got %d and %d", count, w.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w, _ := newTestWorld(t, 20, 20)
	w.Join("a")
	snap := w.Snapshot()
	v, ok := snap.Find("a")
	if !ok {
		t.Fatal("Expected a in snapshot")
	}
	v.Segments[0] = types.Position{X: -5, Y: -5}

	s, _ := w.popMgr.Get("a")
	if s.GetHead() == (types.Position{X: -5, Y: -5}) {
		t.Error("Expected snapshot mutation not to reach the world")
	}
	if !snap.Occupied(v.Segments[1]) {
		t.Error("Expected body cell to be reported occupied")
	}
}

// Input events from many goroutines interleave with ticks without tearing.
func TestConcurrentEvents(t *testing.T) {
	w, _ := newTestWorld(t, 60, 40)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := types.NewClientID()
			for j := 0; j < 50; j++ {
				w.Join(id)
				w.ChangeDirection(id, []string{"up", "down", "left", "right"}[j%4])
				if j%10 == 9 {
					w.Leave(id)
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		w.Tick()
	}
	wg.Wait()

	snap := w.Snapshot()
	seen := make(map[types.ClientID]bool)
	for _, v := range snap.Snakes {
		if seen[v.Owner] {
			t.Fatalf("Expected unique owners, %s appears twice", v.Owner)
		}
		seen[v.Owner] = true
	}
}

func TestMultiRenderer(t *testing.T) {
	a := newRecorder(10, 10)
	b := newRecorder(30, 30)
	m := MultiRenderer(a, b)

	if m.Container() != a.grid {
		t.Errorf("Expected container of the first renderer, got %v", m.Container())
	}
	m.Clear()
	m.Draw(types.Position{X: 1, Y: 1}, types.HeadColor)
	m.Render()
	for _, r := range []*recordingRenderer{a, b} {
		if _, ok := r.drawnAt(types.Position{X: 1, Y: 1}); !ok {
			t.Error("Expected every renderer to receive the draw")
		}
	}

	scores := MultiScoreBoard(a, b)
	scores.UpdateScore("a", 4)
	scores.ResetScore()
	if len(b.scores) != 1 || b.resets != 1 {
		t.Errorf("Expected fan-out to every board, got %v/%d", b.scores, b.resets)
	}
}
