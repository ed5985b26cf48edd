// internal/game/room.go
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the room's position in the round lifecycle.
type Phase string

const (
	PhaseLobby           Phase = "lobby"
	PhaseAlignmentRoll   Phase = "alignment_roll"
	PhaseJudgeChoice     Phase = "judge_choice"
	PhasePromptSelection Phase = "prompt_selection"
	PhaseDrawing         Phase = "drawing"
	PhaseJudging         Phase = "judging"
	PhaseResults         Phase = "results"
	PhaseModifier        Phase = "modifier"
	PhaseGameOver        Phase = "game_over"
)

// Player count bounds for starting a game.
const (
	MinPlayers = 3
	MaxPlayers = 8
)

// Settings is the host-chosen game configuration, locked in at start.
type Settings struct {
	Decks            []string `json:"decks"`
	TimerSeconds     int      `json:"timerSeconds"`
	TargetScore      int      `json:"targetScore"`
	ModifiersEnabled bool     `json:"modifiersEnabled"`
}

// curserState tracks the Modifier-phase sub-flow for the current round.
type curserState struct {
	playerID uuid.UUID
	drawn    *Modifier
	fromHeld bool
}

// Room is the authoritative aggregate for one game session. All mutation
// goes through its methods under Mu; rooms are fully independent of each
// other. Actions return a result describing the delta, which the transport
// layer broadcasts verbatim.
type Room struct {
	Code string

	Mu sync.Mutex

	// Players in judge rotation order. JudgeIndex always indexes this slice
	// once a game has started.
	Players    []*Player
	JudgeIndex int
	HostID     uuid.UUID

	Phase    Phase
	Round    int
	Settings Settings

	pool             *PromptPool
	prevAlignment    Alignment
	currentAlignment Alignment
	currentPrompts   []string
	selectedPrompt   string
	submissions      map[uuid.UUID]*Submission
	awardedKinds     map[TokenKind]bool
	pendingModifiers []PendingModifier
	curser           *curserState

	started bool
	closed  bool

	rng          *rand.Rand
	lastActivity time.Time

	// CountdownTimer is the cosmetic drawing countdown owned by the transport
	// layer. It never forces a phase change; it exists here so Close can stop
	// it and stale fires can be detected.
	CountdownTimer *time.Timer

	// OnEmpty is called after the last player leaves, typically wired by the
	// registry to evict the room.
	OnEmpty func(code string)
}

// NewRoom builds an empty lobby-phase room for the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:         code,
		Phase:        PhaseLobby,
		submissions:  make(map[uuid.UUID]*Submission),
		awardedKinds: make(map[TokenKind]bool),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		lastActivity: time.Now(),
	}
}

// touch records state-mutating activity for the idle sweep.
func (r *Room) touch() {
	r.lastActivity = time.Now()
}

// LastActivity returns when the room last processed a mutating action.
func (r *Room) LastActivity() time.Time {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.lastActivity
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.closed
}

// Close is terminal: all subsequent actions fail with ErrRoomClosed and any
// in-flight countdown is stopped so it cannot fire into a freed room.
func (r *Room) Close() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.CountdownTimer != nil {
		r.CountdownTimer.Stop()
		r.CountdownTimer = nil
	}
}

// StartCountdown arms the cosmetic drawing countdown. fn runs when it fires,
// unless the timer was cancelled or replaced in the meantime. Returns false
// if the room is closed or a countdown is already running.
func (r *Room) StartCountdown(seconds int, fn func()) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.CountdownTimer != nil {
		return false
	}
	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		r.Mu.Lock()
		stale := r.CountdownTimer != timer || r.closed
		r.CountdownTimer = nil
		r.Mu.Unlock()
		if !stale {
			fn()
		}
	})
	r.CountdownTimer = timer
	return true
}

// CancelCountdown stops the drawing countdown if one is armed.
func (r *Room) CancelCountdown() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.cancelCountdownLocked()
}

func (r *Room) cancelCountdownLocked() {
	if r.CountdownTimer != nil {
		r.CountdownTimer.Stop()
		r.CountdownTimer = nil
	}
}

// ---- player lifecycle ----

// AddPlayer seats a new player during the lobby phase. Names are sanitized
// and must be unique in the room, avatars come from the fixed set and must
// be free. The first player to join becomes the host.
func (r *Room) AddPlayer(name, avatar string) (*JoinResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	name = SanitizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if !ValidAvatar(avatar) {
		return nil, ErrInvalidAvatar
	}
	for _, p := range r.Players {
		if p.Name == name {
			return nil, ErrNameTaken
		}
		if p.Avatar == avatar {
			return nil, ErrAvatarTaken
		}
	}

	p := NewPlayer(name, avatar)
	r.Players = append(r.Players, p)
	if len(r.Players) == 1 {
		r.HostID = p.ID
	}
	r.touch()
	return &JoinResult{
		Player: playerView(p),
		IsHost: p.ID == r.HostID,
		Seats:  len(r.Players),
	}, nil
}

// RemovePlayer drops a player (leave or kick) and renormalizes the judge
// index. Removing the sitting judge hands the role to whoever now occupies
// the judge slot; removing the last-listed player wraps the index to 0.
func (r *Room) RemovePlayer(id uuid.UUID) (*LeaveResult, error) {
	r.Mu.Lock()
	if r.closed {
		r.Mu.Unlock()
		return nil, ErrRoomClosed
	}
	idx := r.playerIndex(id)
	if idx < 0 {
		r.Mu.Unlock()
		return nil, ErrPlayerNotFound
	}
	removed := r.Players[idx]
	wasJudge := removed.IsJudge
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if idx < r.JudgeIndex {
		r.JudgeIndex--
	}
	if r.JudgeIndex >= len(r.Players) {
		r.JudgeIndex = 0
	}

	res := &LeaveResult{PlayerID: removed.ID, Name: removed.Name}
	if r.started && len(r.Players) > 0 && wasJudge {
		// Policy: the player now occupying the judge slot becomes judge
		// immediately and inherits the current phase.
		r.Players[r.JudgeIndex].IsJudge = true
		res.NewJudgeID = r.Players[r.JudgeIndex].ID
	}
	if r.curser != nil && r.curser.playerID == removed.ID {
		r.curser = nil
	}
	delete(r.submissions, removed.ID)

	if r.HostID == removed.ID && len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
	}
	res.RoomEmpty = len(r.Players) == 0
	onEmpty := r.OnEmpty
	r.touch()
	r.Mu.Unlock()

	if res.RoomEmpty && onEmpty != nil {
		onEmpty(r.Code)
	}
	return res, nil
}

// SetAvatar changes a player's avatar pre-game.
func (r *Room) SetAvatar(id uuid.UUID, avatar string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if !ValidAvatar(avatar) {
		return ErrInvalidAvatar
	}
	p := r.playerByID(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	for _, other := range r.Players {
		if other.ID != id && other.Avatar == avatar {
			return ErrAvatarTaken
		}
	}
	p.Avatar = avatar
	r.touch()
	return nil
}

// MarkDisconnected flags a player as away without removing their seat.
func (r *Room) MarkDisconnected(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if p := r.playerByID(id); p != nil {
		p.Connected = false
		p.Conn = nil
		r.touch()
	}
}

// Reconnect re-attaches a player whose reconnect token the transport has
// already verified. The stored name wins over whatever the client sent.
func (r *Room) Reconnect(id uuid.UUID) (*Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	p := r.playerByID(id)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	p.Connected = true
	r.touch()
	return p, nil
}

// ---- game flow ----

// Start locks in settings and moves the room out of the lobby. Host-only.
// Requires 3–8 players and at least one valid deck; builds the prompt pool
// and seats a random first judge.
func (r *Room) Start(callerID uuid.UUID, settings Settings) (*StartResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	if callerID != r.HostID {
		return nil, ErrNotHost
	}
	if len(r.Players) < MinPlayers {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrNotEnoughPlayers, len(r.Players), MinPlayers)
	}
	if len(r.Players) > MaxPlayers {
		return nil, ErrRoomFull
	}
	var decks []string
	for _, d := range settings.Decks {
		if DeckExists(d) {
			decks = append(decks, d)
		}
	}
	if len(decks) == 0 {
		return nil, ErrNoDecksSelected
	}
	settings.Decks = decks
	if settings.TimerSeconds <= 0 {
		settings.TimerSeconds = 90
	}
	if settings.TargetScore <= 0 {
		settings.TargetScore = 5
	}

	r.Settings = settings
	r.pool = NewPromptPool(decks, r.rng)
	r.Round = 1
	r.JudgeIndex = r.rng.Intn(len(r.Players))
	for i, p := range r.Players {
		p.IsJudge = i == r.JudgeIndex
	}
	r.started = true
	r.Phase = PhaseAlignmentRoll
	r.touch()

	judge := r.Players[r.JudgeIndex]
	return &StartResult{
		Round:     r.Round,
		JudgeID:   judge.ID,
		JudgeName: judge.Name,
		Phase:     r.Phase,
		PoolSize:  r.pool.Remaining(),
		Settings:  r.Settings,
	}, nil
}

// RollAlignment rolls the round's alignment. Judge-only. A roll matching the
// previous round's alignment is redrawn up to 5 attempts, then accepted
// regardless. Judge's Choice diverts through the JudgeChoice phase.
func (r *Room) RollAlignment(callerID uuid.UUID) (*RollResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseAlignmentRoll, true); err != nil {
		return nil, err
	}
	drawn, attempts := rollAlignment(r.rng, r.prevAlignment)
	r.currentAlignment = drawn
	if drawn == AlignJudgeChoice {
		r.Phase = PhaseJudgeChoice
	} else {
		r.Phase = PhasePromptSelection
	}
	r.touch()
	return &RollResult{
		Alignment:   drawn,
		Attempts:    attempts,
		JudgeChoice: drawn == AlignJudgeChoice,
		Phase:       r.Phase,
	}, nil
}

// SelectJudgeAlignment resolves a Judge's Choice roll into a concrete
// alignment. Judge-only; the special value itself is not selectable.
func (r *Room) SelectJudgeAlignment(callerID uuid.UUID, value string) (*AlignmentResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseJudgeChoice, true); err != nil {
		return nil, err
	}
	if !ValidAlignment(value) {
		return nil, ErrInvalidAlignment
	}
	r.currentAlignment = Alignment(value)
	r.Phase = PhasePromptSelection
	r.touch()
	return &AlignmentResult{Alignment: r.currentAlignment, Phase: r.Phase}, nil
}

// DrawPrompts draws the judge's 3 prompt candidates. Judge-only, once per
// round (rerolls go through RerollPrompts). Fails round-fatally if fewer
// than 3 prompts remain.
func (r *Room) DrawPrompts(callerID uuid.UUID) (*PromptsResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhasePromptSelection, true); err != nil {
		return nil, err
	}
	if len(r.currentPrompts) != 0 {
		return nil, ErrWrongPhase
	}
	prompts, ok := r.pool.DrawCandidates(3)
	if !ok {
		return nil, fmt.Errorf("%w: %d prompts left", ErrPoolExhausted, r.pool.Remaining())
	}
	r.currentPrompts = prompts
	r.touch()
	return &PromptsResult{
		Prompts:    prompts,
		TokensLeft: r.Players[r.JudgeIndex].Tokens.Total(),
		Phase:      r.Phase,
	}, nil
}

// RerollPrompts spends 1 token to replace the judge's 3 candidates. The
// previous candidates were never removed from the pool, so they stay
// eligible for future rounds.
func (r *Room) RerollPrompts(callerID uuid.UUID) (*PromptsResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhasePromptSelection, true); err != nil {
		return nil, err
	}
	if len(r.currentPrompts) == 0 {
		return nil, ErrWrongPhase
	}
	judge := r.Players[r.JudgeIndex]
	if judge.Tokens.Total() < RerollCost {
		return nil, ErrInsufficientTokens
	}
	prompts, ok := r.pool.DrawCandidates(3)
	if !ok {
		return nil, fmt.Errorf("%w: %d prompts left", ErrPoolExhausted, r.pool.Remaining())
	}
	judge.Tokens.Deduct(RerollCost)
	r.currentPrompts = prompts
	r.touch()
	return &PromptsResult{
		Prompts:    prompts,
		Rerolled:   true,
		TokensLeft: judge.Tokens.Total(),
		Phase:      r.Phase,
	}, nil
}

// SelectPrompt commits the judge to one of the 3 candidates. The chosen
// prompt leaves the pool for the remainder of the game, and the room enters
// the drawing phase.
func (r *Room) SelectPrompt(callerID uuid.UUID, index int) (*SelectPromptResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhasePromptSelection, true); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(r.currentPrompts) {
		return nil, ErrInvalidPromptIndex
	}
	prompt := r.currentPrompts[index]
	r.pool.Remove(prompt)
	r.selectedPrompt = prompt
	r.currentPrompts = nil
	r.Phase = PhaseDrawing
	r.touch()
	return &SelectPromptResult{
		Prompt:       prompt,
		PoolSize:     r.pool.Remaining(),
		TimerSeconds: r.Settings.TimerSeconds,
		Phase:        r.Phase,
	}, nil
}

// SubmitDrawing records a non-judge player's drawing. Resubmitting replaces
// the earlier one; submission is optional and stragglers are simply absent
// from the judging snapshot.
func (r *Room) SubmitDrawing(playerID uuid.UUID, payload json.RawMessage) (*SubmitResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseDrawing {
		return nil, ErrWrongPhase
	}
	p := r.playerByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.IsJudge {
		return nil, ErrJudgeForbidden
	}
	r.submissions[playerID] = &Submission{
		PlayerID: playerID,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Payload:  payload,
	}
	r.touch()
	return &SubmitResult{
		PlayerID:  playerID,
		Submitted: len(r.submissions),
		Expected:  len(r.Players) - 1,
	}, nil
}

// EndDrawing snapshots whatever has been submitted and moves to judging.
// Judge-only; the countdown timer never calls this on its own. Submissions
// are shuffled so presentation order carries no information about
// submission order.
func (r *Room) EndDrawing(callerID uuid.UUID) (*EndDrawingResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseDrawing, true); err != nil {
		return nil, err
	}
	r.cancelCountdownLocked()
	subs := make([]Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		subs = append(subs, *s)
	}
	r.rng.Shuffle(len(subs), func(i, j int) {
		subs[i], subs[j] = subs[j], subs[i]
	})
	r.Phase = PhaseJudging
	r.touch()
	return &EndDrawingResult{Submissions: subs, Phase: r.Phase}, nil
}

// SelectWinner records the judge's pick. The winner gains a point; crossing
// the target score ends the game immediately, skipping Results and Modifier.
func (r *Room) SelectWinner(callerID, winnerID uuid.UUID) (*WinnerResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseJudging, true); err != nil {
		return nil, err
	}
	winner := r.playerByID(winnerID)
	if winner == nil {
		return nil, ErrPlayerNotFound
	}
	if winner.IsJudge {
		return nil, ErrInvalidTarget
	}
	winner.Score++
	gameOver := winner.Score >= r.Settings.TargetScore
	if gameOver {
		r.Phase = PhaseGameOver
	} else {
		r.Phase = PhaseResults
	}
	r.touch()
	return &WinnerResult{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Scores:     r.scoresLocked(),
		GameOver:   gameOver,
		Phase:      r.Phase,
	}, nil
}

// AwardToken hands a bonus token to a non-judge player during Results. Each
// of the four kinds can be given out at most once per round.
func (r *Room) AwardToken(callerID, targetID uuid.UUID, kind TokenKind) (*AwardResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseResults, true); err != nil {
		return nil, err
	}
	if !ValidTokenKind(string(kind)) {
		return nil, ErrInvalidTokenKind
	}
	if r.awardedKinds[kind] {
		return nil, ErrKindAlreadyGiven
	}
	target := r.playerByID(targetID)
	if target == nil {
		return nil, ErrPlayerNotFound
	}
	if target.IsJudge {
		return nil, ErrInvalidTarget
	}
	target.Tokens.Award(kind)
	r.awardedKinds[kind] = true
	r.touch()
	return &AwardResult{
		PlayerID:   target.ID,
		PlayerName: target.Name,
		Kind:       kind,
		NewTotal:   target.Tokens.Total(),
	}, nil
}

// ExecuteSteal spends 3 of the stealer's tokens to move one point from the
// target to the stealer. Available from Results until the round advances;
// the judge can be robbed but cannot steal. Crossing the target score ends
// the game on the spot.
func (r *Room) ExecuteSteal(stealerID, targetID uuid.UUID) (*StealResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseResults && r.Phase != PhaseModifier {
		return nil, ErrWrongPhase
	}
	stealer := r.playerByID(stealerID)
	if stealer == nil {
		return nil, ErrPlayerNotFound
	}
	if stealer.IsJudge {
		return nil, ErrJudgeForbidden
	}
	target := r.playerByID(targetID)
	if target == nil {
		return nil, ErrPlayerNotFound
	}
	if target.ID == stealer.ID {
		return nil, ErrInvalidTarget
	}
	if target.Score < 1 {
		return nil, ErrInvalidTarget
	}
	if !stealer.Tokens.Deduct(StealCost) {
		return nil, ErrInsufficientTokens
	}
	target.Score--
	stealer.Score++
	gameOver := stealer.Score >= r.Settings.TargetScore
	if gameOver {
		r.Phase = PhaseGameOver
	}
	r.touch()
	return &StealResult{
		StealerID:    stealer.ID,
		StealerName:  stealer.Name,
		TargetID:     target.ID,
		TargetName:   target.Name,
		StealerScore: stealer.Score,
		TargetScore:  target.Score,
		Scores:       r.scoresLocked(),
		GameOver:     gameOver,
		Phase:        r.Phase,
	}, nil
}

// ---- curse sub-flow ----

// CheckModifierPhase decides whether this round has a Modifier phase and, if
// so, picks the curser: a random non-judge player tied for last place.
// Skipped entirely when modifiers are disabled, or on round 1 with all
// scores tied. Judge-only.
func (r *Room) CheckModifierPhase(callerID uuid.UUID) (*ModifierCheckResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkAction(callerID, PhaseResults, true); err != nil {
		return nil, err
	}
	if !r.Settings.ModifiersEnabled {
		return &ModifierCheckResult{Skipped: true, Reason: "modifiers_disabled", Phase: r.Phase}, nil
	}
	if r.Round == 1 && r.allScoresTiedLocked() {
		return &ModifierCheckResult{Skipped: true, Reason: "no_last_place", Phase: r.Phase}, nil
	}
	candidates := r.lastPlaceNonJudgesLocked()
	if len(candidates) == 0 {
		return &ModifierCheckResult{Skipped: true, Reason: "no_eligible_curser", Phase: r.Phase}, nil
	}
	curser := candidates[r.rng.Intn(len(candidates))]
	r.curser = &curserState{playerID: curser.ID}
	r.Phase = PhaseModifier
	r.touch()
	return &ModifierCheckResult{
		CurserID:     curser.ID,
		CurserName:   curser.Name,
		HasHeldCurse: curser.HeldCurse != nil,
		Phase:        r.Phase,
	}, nil
}

// DrawCurseCard draws a fresh curse for the curser. If they were holding a
// curse, drawing discards it.
func (r *Room) DrawCurseCard(callerID uuid.UUID) (*CurseDrawResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	curser, err := r.curserForAction(callerID)
	if err != nil {
		return nil, err
	}
	if r.curser.drawn != nil {
		return nil, ErrCurseResolved
	}
	curser.HeldCurse = nil
	m := drawModifier(r.rng)
	r.curser.drawn = &m
	r.curser.fromHeld = false
	r.touch()
	return &CurseDrawResult{Modifier: m}, nil
}

// UseHeldCurse plays the curser's previously held curse this round instead
// of drawing a new one.
func (r *Room) UseHeldCurse(callerID uuid.UUID) (*CurseDrawResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	curser, err := r.curserForAction(callerID)
	if err != nil {
		return nil, err
	}
	if r.curser.drawn != nil {
		return nil, ErrCurseResolved
	}
	if curser.HeldCurse == nil {
		return nil, ErrNoHeldCurse
	}
	m := *curser.HeldCurse
	curser.HeldCurse = nil
	r.curser.drawn = &m
	r.curser.fromHeld = true
	r.touch()
	return &CurseDrawResult{Modifier: m, FromHeld: true}, nil
}

// ApplyCurse stages the drawn curse against a target who is neither the
// curser nor the judge. The curse activates at the next round advance and
// lasts exactly one round.
func (r *Room) ApplyCurse(callerID, targetID uuid.UUID) (*CurseResolveResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if _, err := r.curserForAction(callerID); err != nil {
		return nil, err
	}
	if r.curser.drawn == nil {
		return nil, ErrNoCurseDrawn
	}
	target := r.playerByID(targetID)
	if target == nil {
		return nil, ErrPlayerNotFound
	}
	if target.ID == callerID || target.IsJudge {
		return nil, ErrInvalidTarget
	}
	m := *r.curser.drawn
	r.pendingModifiers = append(r.pendingModifiers, PendingModifier{
		CurserID: callerID,
		TargetID: targetID,
		Modifier: m,
	})
	r.curser.drawn = nil
	r.touch()
	return &CurseResolveResult{CurserID: callerID, TargetID: targetID, Modifier: m}, nil
}

// HoldCurse defers the drawn curse to a future round. A player holds at most
// one curse; holding overwrites any prior hold.
func (r *Room) HoldCurse(callerID uuid.UUID) (*CurseResolveResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	curser, err := r.curserForAction(callerID)
	if err != nil {
		return nil, err
	}
	if r.curser.drawn == nil {
		return nil, ErrNoCurseDrawn
	}
	m := *r.curser.drawn
	curser.HeldCurse = &m
	r.curser.drawn = nil
	r.touch()
	return &CurseResolveResult{CurserID: callerID, Modifier: m, Held: true}, nil
}

// ---- round advance ----

// AdvanceRound rotates the judge, clears transient round state, activates
// staged curses, and returns to the alignment roll — or ends the game if a
// score already crossed the threshold. Judge-only, from Results or Modifier
// (the Modifier sub-flow must be resolved first).
func (r *Room) AdvanceRound(callerID uuid.UUID) (*AdvanceResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseResults && r.Phase != PhaseModifier {
		return nil, ErrWrongPhase
	}
	caller := r.playerByID(callerID)
	if caller == nil {
		return nil, ErrPlayerNotFound
	}
	if !caller.IsJudge {
		return nil, ErrNotJudge
	}
	if r.curser != nil && r.curser.drawn != nil {
		return nil, ErrCurseUnresolved
	}

	if winner := r.thresholdWinnerLocked(); winner != nil {
		r.Phase = PhaseGameOver
		r.touch()
		return &AdvanceResult{
			Round:    r.Round,
			GameOver: true,
			WinnerID: winner.ID,
			Phase:    r.Phase,
		}, nil
	}

	r.Round++
	r.Players[r.JudgeIndex].IsJudge = false
	r.JudgeIndex = (r.JudgeIndex + 1) % len(r.Players)
	judge := r.Players[r.JudgeIndex]
	judge.IsJudge = true

	r.prevAlignment = r.currentAlignment
	r.currentAlignment = ""
	r.currentPrompts = nil
	r.selectedPrompt = ""
	r.submissions = make(map[uuid.UUID]*Submission)
	r.awardedKinds = make(map[TokenKind]bool)
	r.curser = nil
	r.cancelCountdownLocked()

	// Single drain point for deferred curse effects: last round's active
	// modifiers expire, then this round's staged ones land.
	for _, p := range r.Players {
		p.ActiveModifiers = nil
	}
	activated := r.pendingModifiers
	r.pendingModifiers = nil
	applied := make([]PendingModifier, 0, len(activated))
	for _, pm := range activated {
		target := r.playerByID(pm.TargetID)
		if target == nil {
			continue // target left before the curse landed
		}
		target.ActiveModifiers = append(target.ActiveModifiers, pm.Modifier)
		applied = append(applied, pm)
	}

	r.Phase = PhaseAlignmentRoll
	r.touch()
	return &AdvanceResult{
		Round:     r.Round,
		JudgeID:   judge.ID,
		JudgeName: judge.Name,
		Activated: applied,
		Phase:     r.Phase,
	}, nil
}

// ---- snapshots ----

// State returns the full public snapshot for connect/reconnect broadcasts.
func (r *Room) State() *RoomState {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	views := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		views = append(views, *playerView(p))
	}
	st := &RoomState{
		Code:           r.Code,
		Phase:          r.Phase,
		Round:          r.Round,
		Players:        views,
		HostID:         r.HostID,
		Alignment:      r.currentAlignment,
		Prompts:        append([]string(nil), r.currentPrompts...),
		SelectedPrompt: r.selectedPrompt,
		Submitted:      len(r.submissions),
		Settings:       r.Settings,
	}
	if r.started && len(r.Players) > 0 {
		st.JudgeID = r.Players[r.JudgeIndex].ID
	}
	return st
}

// Judge returns the current judge, or nil before the game starts.
func (r *Room) Judge() *Player {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if !r.started || len(r.Players) == 0 {
		return nil
	}
	return r.Players[r.JudgeIndex]
}

// PlayerByID looks up a seated player.
func (r *Room) PlayerByID(id uuid.UUID) *Player {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.playerByID(id)
}

// ---- internal helpers (lock held) ----

// checkAction is the shared phase/role gate for judge-driven actions.
func (r *Room) checkAction(callerID uuid.UUID, want Phase, judgeOnly bool) error {
	if r.closed {
		return ErrRoomClosed
	}
	if r.Phase != want {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongPhase, r.Phase, want)
	}
	caller := r.playerByID(callerID)
	if caller == nil {
		return ErrPlayerNotFound
	}
	if judgeOnly && !caller.IsJudge {
		return ErrNotJudge
	}
	return nil
}

// curserForAction validates a Modifier-phase action by the current curser.
func (r *Room) curserForAction(callerID uuid.UUID) (*Player, error) {
	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.Phase != PhaseModifier {
		return nil, ErrWrongPhase
	}
	if r.curser == nil || r.curser.playerID != callerID {
		return nil, ErrNotCurser
	}
	p := r.playerByID(callerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (r *Room) playerByID(id uuid.UUID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerIndex(id uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) scoresLocked() []PlayerScore {
	out := make([]PlayerScore, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, PlayerScore{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return out
}

func (r *Room) allScoresTiedLocked() bool {
	if len(r.Players) == 0 {
		return true
	}
	first := r.Players[0].Score
	for _, p := range r.Players[1:] {
		if p.Score != first {
			return false
		}
	}
	return true
}

func (r *Room) lastPlaceNonJudgesLocked() []*Player {
	lowest := -1
	for _, p := range r.Players {
		if p.IsJudge {
			continue
		}
		if lowest == -1 || p.Score < lowest {
			lowest = p.Score
		}
	}
	var out []*Player
	for _, p := range r.Players {
		if !p.IsJudge && p.Score == lowest {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) thresholdWinnerLocked() *Player {
	for _, p := range r.Players {
		if p.Score >= r.Settings.TargetScore {
			return p
		}
	}
	return nil
}

func playerView(p *Player) *PlayerView {
	return &PlayerView{
		ID:              p.ID,
		Name:            p.Name,
		Avatar:          p.Avatar,
		Score:           p.Score,
		Tokens:          p.Tokens.Snapshot(),
		Connected:       p.Connected,
		IsJudge:         p.IsJudge,
		ActiveModifiers: append([]Modifier(nil), p.ActiveModifiers...),
		HasHeldCurse:    p.HeldCurse != nil,
	}
}
