// internal/game/room_test.go
package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNames = []string{"Ava", "Ben", "Cleo", "Dax", "Elle", "Finn", "Gus", "Hana"}

// setupTestRoom seats n players and starts a game with modifiers enabled.
func setupTestRoom(t *testing.T, n int) *Room {
	t.Helper()
	r := NewRoom("TEST")
	for i := 0; i < n; i++ {
		_, err := r.AddPlayer(testNames[i], Avatars[i])
		require.NoError(t, err)
	}
	_, err := r.Start(r.HostID, Settings{
		Decks:            []string{"classic", "animals"},
		TimerSeconds:     30,
		TargetScore:      5,
		ModifiersEnabled: true,
	})
	require.NoError(t, err)
	return r
}

// nonJudge returns a seated player who is not the current judge.
func nonJudge(r *Room) *Player {
	for _, p := range r.Players {
		if !p.IsJudge {
			return p
		}
	}
	return nil
}

// lowestNonJudge returns the non-judge with the fewest points, to spread
// wins in multi-round tests without tripping the target score.
func lowestNonJudge(r *Room) *Player {
	var out *Player
	for _, p := range r.Players {
		if p.IsJudge {
			continue
		}
		if out == nil || p.Score < out.Score {
			out = p
		}
	}
	return out
}

// playRound walks one full round up to the Results phase, crowning winnerID.
func playRound(t *testing.T, r *Room, winnerID uuid.UUID) *WinnerResult {
	t.Helper()
	judge := r.Judge()
	require.NotNil(t, judge)

	roll, err := r.RollAlignment(judge.ID)
	require.NoError(t, err)
	if roll.JudgeChoice {
		_, err = r.SelectJudgeAlignment(judge.ID, string(AlignTN))
		require.NoError(t, err)
	}

	_, err = r.DrawPrompts(judge.ID)
	require.NoError(t, err)
	_, err = r.SelectPrompt(judge.ID, 0)
	require.NoError(t, err)

	for _, p := range r.Players {
		if p.IsJudge {
			continue
		}
		_, err = r.SubmitDrawing(p.ID, json.RawMessage(`{"strokes":[]}`))
		require.NoError(t, err)
	}
	_, err = r.EndDrawing(judge.ID)
	require.NoError(t, err)

	res, err := r.SelectWinner(judge.ID, winnerID)
	require.NoError(t, err)
	return res
}

// assertSingleJudge verifies exactly one player holds the judge role and
// that it is the one the judge index points at.
func assertSingleJudge(t *testing.T, r *Room) {
	t.Helper()
	count := 0
	for _, p := range r.Players {
		if p.IsJudge {
			count++
		}
	}
	require.Equal(t, 1, count)
	assert.True(t, r.Players[r.JudgeIndex].IsJudge)
}

func TestAddPlayerLobbyRules(t *testing.T) {
	r := NewRoom("AAAA")

	res, err := r.AddPlayer("Ava", Avatars[0])
	require.NoError(t, err)
	assert.True(t, res.IsHost)
	assert.Equal(t, 1, res.Seats)

	_, err = r.AddPlayer("Ava", Avatars[1])
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = r.AddPlayer("Ben", Avatars[0])
	assert.ErrorIs(t, err, ErrAvatarTaken)

	_, err = r.AddPlayer("Ben", "not-an-avatar")
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	_, err = r.AddPlayer("   ", Avatars[1])
	assert.ErrorIs(t, err, ErrInvalidName)

	for i := 1; i < MaxPlayers; i++ {
		_, err = r.AddPlayer(testNames[i], Avatars[i])
		require.NoError(t, err)
	}
	_, err = r.AddPlayer("Iggy", Avatars[8])
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddPlayerRejectedMidGame(t *testing.T) {
	r := setupTestRoom(t, 3)
	_, err := r.AddPlayer("Late", Avatars[5])
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestStartValidation(t *testing.T) {
	r := NewRoom("BBBB")
	_, _ = r.AddPlayer("Ava", Avatars[0])
	_, _ = r.AddPlayer("Ben", Avatars[1])

	_, err := r.Start(r.HostID, Settings{Decks: []string{"classic"}})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, _ = r.AddPlayer("Cleo", Avatars[2])

	notHost := r.Players[1].ID
	_, err = r.Start(notHost, Settings{Decks: []string{"classic"}})
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = r.Start(r.HostID, Settings{Decks: []string{"no-such-deck"}})
	assert.ErrorIs(t, err, ErrNoDecksSelected)

	res, err := r.Start(r.HostID, Settings{Decks: []string{"classic"}})
	require.NoError(t, err)
	assert.Equal(t, PhaseAlignmentRoll, res.Phase)
	assert.Equal(t, 90, r.Settings.TimerSeconds)
	assert.Equal(t, 5, r.Settings.TargetScore)
	assertSingleJudge(t, r)
}

func TestJudgeRotationOverRounds(t *testing.T) {
	r := setupTestRoom(t, 4)

	seen := make(map[uuid.UUID]int)
	for round := 0; round < 8; round++ {
		judge := r.Judge()
		seen[judge.ID]++
		assertSingleJudge(t, r)

		playRound(t, r, lowestNonJudge(r).ID)
		adv, err := r.AdvanceRound(judge.ID)
		require.NoError(t, err)
		assert.Equal(t, PhaseAlignmentRoll, adv.Phase)
		assert.NotEqual(t, judge.ID, adv.JudgeID)
	}
	// 8 rounds over 4 players: everyone judged exactly twice.
	for _, n := range seen {
		assert.Equal(t, 2, n)
	}
}

func TestSelectedPromptNeverReturns(t *testing.T) {
	r := setupTestRoom(t, 3)
	used := make(map[string]bool)

	for round := 0; round < 5; round++ {
		judge := r.Judge()
		before := r.pool.Remaining()

		roll, err := r.RollAlignment(judge.ID)
		require.NoError(t, err)
		if roll.JudgeChoice {
			_, err = r.SelectJudgeAlignment(judge.ID, string(AlignCG))
			require.NoError(t, err)
		}
		_, err = r.DrawPrompts(judge.ID)
		require.NoError(t, err)
		sel, err := r.SelectPrompt(judge.ID, 1)
		require.NoError(t, err)

		assert.False(t, used[sel.Prompt], "prompt %q reused", sel.Prompt)
		used[sel.Prompt] = true
		assert.Equal(t, before-1, r.pool.Remaining())
		assert.False(t, r.pool.Contains(sel.Prompt))

		loser := nonJudge(r)
		_, err = r.SubmitDrawing(loser.ID, json.RawMessage(`{}`))
		require.NoError(t, err)
		_, err = r.EndDrawing(judge.ID)
		require.NoError(t, err)
		_, err = r.SelectWinner(judge.ID, loser.ID)
		require.NoError(t, err)
		_, err = r.AdvanceRound(judge.ID)
		require.NoError(t, err)
	}
}

func TestDrawPromptsOncePerRound(t *testing.T) {
	r := setupTestRoom(t, 3)
	judge := r.Judge()

	roll, err := r.RollAlignment(judge.ID)
	require.NoError(t, err)
	if roll.JudgeChoice {
		_, err = r.SelectJudgeAlignment(judge.ID, string(AlignNE))
		require.NoError(t, err)
	}
	_, err = r.DrawPrompts(judge.ID)
	require.NoError(t, err)
	_, err = r.DrawPrompts(judge.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestRerollRequiresToken(t *testing.T) {
	r := setupTestRoom(t, 3)
	judge := r.Judge()

	roll, err := r.RollAlignment(judge.ID)
	require.NoError(t, err)
	if roll.JudgeChoice {
		_, err = r.SelectJudgeAlignment(judge.ID, string(AlignLE))
		require.NoError(t, err)
	}
	first, err := r.DrawPrompts(judge.ID)
	require.NoError(t, err)

	// No tokens yet: the reroll fails and the candidates stay put.
	_, err = r.RerollPrompts(judge.ID)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Equal(t, first.Prompts, r.currentPrompts)

	judge.Tokens.Award(TokenQuickDraw)
	res, err := r.RerollPrompts(judge.ID)
	require.NoError(t, err)
	assert.True(t, res.Rerolled)
	assert.Equal(t, 0, res.TokensLeft)
	assert.Equal(t, 0, judge.Tokens.Total())
}

func TestJudgeChoiceSelection(t *testing.T) {
	r := setupTestRoom(t, 3)
	judge := r.Judge()

	// Force the sub-phase; the roll itself is random.
	r.Mu.Lock()
	r.currentAlignment = AlignJudgeChoice
	r.Phase = PhaseJudgeChoice
	r.Mu.Unlock()

	_, err := r.SelectJudgeAlignment(nonJudge(r).ID, string(AlignLG))
	assert.ErrorIs(t, err, ErrNotJudge)

	_, err = r.SelectJudgeAlignment(judge.ID, "JUDGE_CHOICE")
	assert.ErrorIs(t, err, ErrInvalidAlignment)

	res, err := r.SelectJudgeAlignment(judge.ID, string(AlignLG))
	require.NoError(t, err)
	assert.Equal(t, AlignLG, res.Alignment)
	assert.Equal(t, PhasePromptSelection, res.Phase)
}

func TestSubmitDrawingRules(t *testing.T) {
	r := setupTestRoom(t, 3)
	judge := r.Judge()
	artist := nonJudge(r)

	_, err := r.SubmitDrawing(artist.ID, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrWrongPhase)

	roll, err := r.RollAlignment(judge.ID)
	require.NoError(t, err)
	if roll.JudgeChoice {
		_, err = r.SelectJudgeAlignment(judge.ID, string(AlignCN))
		require.NoError(t, err)
	}
	_, err = r.DrawPrompts(judge.ID)
	require.NoError(t, err)
	_, err = r.SelectPrompt(judge.ID, 0)
	require.NoError(t, err)

	_, err = r.SubmitDrawing(judge.ID, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrJudgeForbidden)

	first, err := r.SubmitDrawing(artist.ID, json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Submitted)

	// Resubmission replaces, never duplicates.
	second, err := r.SubmitDrawing(artist.ID, json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Submitted)
	assert.Equal(t, 2, second.Expected)

	end, err := r.EndDrawing(judge.ID)
	require.NoError(t, err)
	require.Len(t, end.Submissions, 1)
	assert.JSONEq(t, `{"v":2}`, string(end.Submissions[0].Payload))
}

func TestSelectWinnerScoresAndGameOver(t *testing.T) {
	r := setupTestRoom(t, 3)
	_, err := r.Start(r.HostID, Settings{})
	assert.ErrorIs(t, err, ErrWrongPhase)

	winner := nonJudge(r)
	res := playRound(t, r, winner.ID)
	assert.False(t, res.GameOver)
	assert.Equal(t, PhaseResults, res.Phase)
	assert.Equal(t, 1, winner.Score)

	// A judge cannot be its own round winner.
	r.Mu.Lock()
	r.Phase = PhaseJudging
	r.Mu.Unlock()
	judge := r.Judge()
	_, err = r.SelectWinner(judge.ID, judge.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Hitting the target score ends the game immediately.
	winner.Score = r.Settings.TargetScore - 1
	final, err := r.SelectWinner(judge.ID, winner.ID)
	require.NoError(t, err)
	assert.True(t, final.GameOver)
	assert.Equal(t, PhaseGameOver, final.Phase)
}

func TestAwardTokenOncePerKind(t *testing.T) {
	r := setupTestRoom(t, 4)
	winner := nonJudge(r)
	playRound(t, r, winner.ID)

	judge := r.Judge()
	target := nonJudge(r)

	_, err := r.AwardToken(judge.ID, target.ID, TokenMindReader)
	require.NoError(t, err)
	_, err = r.AwardToken(judge.ID, target.ID, TokenMindReader)
	assert.ErrorIs(t, err, ErrKindAlreadyGiven)

	_, err = r.AwardToken(judge.ID, target.ID, "golden_crayon")
	assert.ErrorIs(t, err, ErrInvalidTokenKind)

	_, err = r.AwardToken(judge.ID, judge.ID, TokenCrowdFavorite)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	res, err := r.AwardToken(judge.ID, target.ID, TokenCrowdFavorite)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewTotal)

	// The per-kind ledger resets on round advance.
	_, err = r.AdvanceRound(judge.ID)
	require.NoError(t, err)
	playRound(t, r, nonJudge(r).ID)
	_, err = r.AwardToken(r.Judge().ID, nonJudge(r).ID, TokenMindReader)
	assert.NoError(t, err)
}

func TestExecuteSteal(t *testing.T) {
	r := setupTestRoom(t, 4)
	victim := nonJudge(r)
	playRound(t, r, victim.ID)

	judge := r.Judge()
	var stealer *Player
	for _, p := range r.Players {
		if !p.IsJudge && p.ID != victim.ID {
			stealer = p
			break
		}
	}

	_, err := r.ExecuteSteal(stealer.ID, victim.ID)
	assert.ErrorIs(t, err, ErrInsufficientTokens)

	stealer.Tokens.Award(TokenMindReader)
	stealer.Tokens.Award(TokenDarkHorse)
	stealer.Tokens.Award(TokenDarkHorse)

	_, err = r.ExecuteSteal(judge.ID, victim.ID)
	assert.ErrorIs(t, err, ErrJudgeForbidden)
	_, err = r.ExecuteSteal(stealer.ID, stealer.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = r.ExecuteSteal(stealer.ID, judge.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget) // judge has no points to take

	res, err := r.ExecuteSteal(stealer.ID, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StealerScore)
	assert.Equal(t, 0, res.TargetScore)
	assert.Equal(t, 0, stealer.Tokens.Total())
	assert.False(t, res.GameOver)
}

func TestStealCanEndGame(t *testing.T) {
	r := setupTestRoom(t, 3)
	victim := nonJudge(r)
	playRound(t, r, victim.ID)

	var stealer *Player
	for _, p := range r.Players {
		if !p.IsJudge && p.ID != victim.ID {
			stealer = p
			break
		}
	}
	stealer.Score = r.Settings.TargetScore - 1
	for i := 0; i < StealCost; i++ {
		stealer.Tokens.Award(TokenQuickDraw)
	}

	res, err := r.ExecuteSteal(stealer.ID, victim.ID)
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.Equal(t, PhaseGameOver, res.Phase)
}

func TestCurseLifecycle(t *testing.T) {
	r := setupTestRoom(t, 4)
	winner := nonJudge(r)
	playRound(t, r, winner.ID)

	judge := r.Judge()
	check, err := r.CheckModifierPhase(judge.ID)
	require.NoError(t, err)
	require.False(t, check.Skipped)
	assert.Equal(t, PhaseModifier, r.Phase)

	curser := r.PlayerByID(check.CurserID)
	require.NotNil(t, curser)
	assert.False(t, curser.IsJudge)
	assert.Equal(t, 0, curser.Score)

	_, err = r.DrawCurseCard(winner.ID)
	assert.ErrorIs(t, err, ErrNotCurser)
	_, err = r.ApplyCurse(curser.ID, winner.ID)
	assert.ErrorIs(t, err, ErrNoCurseDrawn)

	drawn, err := r.DrawCurseCard(curser.ID)
	require.NoError(t, err)

	// An unresolved curse blocks the round advance.
	_, err = r.AdvanceRound(judge.ID)
	assert.ErrorIs(t, err, ErrCurseUnresolved)

	_, err = r.ApplyCurse(curser.ID, curser.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = r.ApplyCurse(curser.ID, judge.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = r.ApplyCurse(curser.ID, winner.ID)
	require.NoError(t, err)

	adv, err := r.AdvanceRound(judge.ID)
	require.NoError(t, err)
	require.Len(t, adv.Activated, 1)
	assert.Equal(t, drawn.Modifier.ID, adv.Activated[0].Modifier.ID)
	require.Len(t, winner.ActiveModifiers, 1)

	// Active for exactly one round: gone after the next advance.
	playRound(t, r, nonJudge(r).ID)
	_, err = r.AdvanceRound(r.Judge().ID)
	require.NoError(t, err)
	assert.Empty(t, winner.ActiveModifiers)
}

func TestHoldAndUseHeldCurse(t *testing.T) {
	r := setupTestRoom(t, 4)
	winner := nonJudge(r)
	playRound(t, r, winner.ID)

	check, err := r.CheckModifierPhase(r.Judge().ID)
	require.NoError(t, err)
	require.False(t, check.Skipped)
	curser := r.PlayerByID(check.CurserID)

	_, err = r.UseHeldCurse(curser.ID)
	assert.ErrorIs(t, err, ErrNoHeldCurse)

	drawn, err := r.DrawCurseCard(curser.ID)
	require.NoError(t, err)
	held, err := r.HoldCurse(curser.ID)
	require.NoError(t, err)
	assert.True(t, held.Held)
	require.NotNil(t, curser.HeldCurse)
	assert.Equal(t, drawn.Modifier.ID, curser.HeldCurse.ID)

	_, err = r.AdvanceRound(r.Judge().ID)
	require.NoError(t, err)

	// Keep the curser in last place so they are picked again.
	var secondWinner *Player
	for _, p := range r.Players {
		if !p.IsJudge && p.ID != curser.ID {
			secondWinner = p
			break
		}
	}
	playRound(t, r, secondWinner.ID)
	if curser.IsJudge {
		t.Skip("held-curse reuse needs the curser off the bench")
	}
	check2, err := r.CheckModifierPhase(r.Judge().ID)
	require.NoError(t, err)
	if check2.Skipped || check2.CurserID != curser.ID {
		t.Skip("random curser pick landed elsewhere")
	}
	assert.True(t, check2.HasHeldCurse)

	used, err := r.UseHeldCurse(curser.ID)
	require.NoError(t, err)
	assert.True(t, used.FromHeld)
	assert.Equal(t, drawn.Modifier.ID, used.Modifier.ID)
	assert.Nil(t, curser.HeldCurse)
}

func TestModifierPhaseSkips(t *testing.T) {
	r := NewRoom("CCCC")
	for i := 0; i < 3; i++ {
		_, err := r.AddPlayer(testNames[i], Avatars[i])
		require.NoError(t, err)
	}
	_, err := r.Start(r.HostID, Settings{Decks: []string{"classic"}, ModifiersEnabled: false})
	require.NoError(t, err)
	playRound(t, r, nonJudge(r).ID)

	check, err := r.CheckModifierPhase(r.Judge().ID)
	require.NoError(t, err)
	assert.True(t, check.Skipped)
	assert.Equal(t, "modifiers_disabled", check.Reason)
	assert.Equal(t, PhaseResults, r.Phase)
}

func TestRemoveJudgeHandsOffRole(t *testing.T) {
	r := setupTestRoom(t, 4)
	judge := r.Judge()

	res, err := r.RemovePlayer(judge.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.NewJudgeID)
	assert.Len(t, r.Players, 3)
	assertSingleJudge(t, r)
	assert.Equal(t, res.NewJudgeID, r.Players[r.JudgeIndex].ID)
}

func TestRemoveLastPlayerFiresOnEmpty(t *testing.T) {
	r := NewRoom("DDDD")
	var emptied string
	r.OnEmpty = func(code string) { emptied = code }

	join, err := r.AddPlayer("Solo", Avatars[0])
	require.NoError(t, err)
	res, err := r.RemovePlayer(join.Player.ID)
	require.NoError(t, err)
	assert.True(t, res.RoomEmpty)
	assert.Equal(t, "DDDD", emptied)
}

func TestHostHandoffOnLeave(t *testing.T) {
	r := NewRoom("EEEE")
	host, _ := r.AddPlayer("Ava", Avatars[0])
	next, _ := r.AddPlayer("Ben", Avatars[1])

	_, err := r.RemovePlayer(host.Player.ID)
	require.NoError(t, err)
	assert.Equal(t, next.Player.ID, r.HostID)
}

func TestClosedRoomRejectsEverything(t *testing.T) {
	r := setupTestRoom(t, 3)
	judge := r.Judge()
	r.Close()

	_, err := r.AddPlayer("Late", Avatars[7])
	assert.ErrorIs(t, err, ErrRoomClosed)
	_, err = r.RollAlignment(judge.ID)
	assert.ErrorIs(t, err, ErrRoomClosed)
	_, err = r.AdvanceRound(judge.ID)
	assert.ErrorIs(t, err, ErrRoomClosed)

	// Close is idempotent.
	r.Close()
	assert.True(t, r.Closed())
}

func TestCountdownIsCosmetic(t *testing.T) {
	r := setupTestRoom(t, 3)

	// Only one countdown may be armed at a time.
	require.True(t, r.StartCountdown(60, func() { t.Error("cancelled countdown fired") }))
	assert.False(t, r.StartCountdown(60, func() {}))
	r.CancelCountdown()

	fired := make(chan struct{}, 1)
	require.True(t, r.StartCountdown(0, func() { fired <- struct{}{} }))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired")
	}
	// The phase did not move on its own.
	assert.Equal(t, PhaseAlignmentRoll, r.Phase)

	r.Close()
	assert.False(t, r.StartCountdown(0, func() {}))
}

func TestReconnectKeepsSeatAndState(t *testing.T) {
	r := setupTestRoom(t, 3)
	p := nonJudge(r)
	p.Score = 2

	r.MarkDisconnected(p.ID)
	assert.False(t, p.Connected)

	got, err := r.Reconnect(p.ID)
	require.NoError(t, err)
	assert.True(t, got.Connected)
	assert.Equal(t, 2, got.Score)

	_, err = r.Reconnect(uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestStateSnapshot(t *testing.T) {
	r := setupTestRoom(t, 3)
	st := r.State()
	assert.Equal(t, "TEST", st.Code)
	assert.Equal(t, PhaseAlignmentRoll, st.Phase)
	assert.Equal(t, 1, st.Round)
	assert.Len(t, st.Players, 3)
	assert.Equal(t, r.Judge().ID, st.JudgeID)
	assert.Equal(t, r.HostID, st.HostID)
}
