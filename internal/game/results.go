// internal/game/results.go
package game

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Every public room action returns one of the result structs below. They
// carry enough for the transport layer to broadcast a state delta verbatim,
// without re-deriving anything from room state.

// PlayerScore is a score-line entry used in several results.
type PlayerScore struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score int       `json:"score"`
}

// PlayerView is the public shape of one player for broadcasts.
type PlayerView struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Avatar          string            `json:"avatar"`
	Score           int               `json:"score"`
	Tokens          map[TokenKind]int `json:"tokens"`
	Connected       bool              `json:"connected"`
	IsJudge         bool              `json:"isJudge"`
	ActiveModifiers []Modifier        `json:"activeModifiers"`
	HasHeldCurse    bool              `json:"hasHeldCurse"`
}

// Submission is one player's drawing for the current round. Payload is the
// opaque client-encoded drawing blob; the core never inspects it.
type Submission struct {
	PlayerID uuid.UUID       `json:"playerId"`
	Name     string          `json:"name"`
	Avatar   string          `json:"avatar"`
	Payload  json.RawMessage `json:"payload"`
}

// JoinResult describes a successful join.
type JoinResult struct {
	Player *PlayerView `json:"player"`
	IsHost bool        `json:"isHost"`
	Seats  int         `json:"seats"`
}

// LeaveResult describes a player removal, including any judge handoff.
type LeaveResult struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Name       string    `json:"name"`
	NewJudgeID uuid.UUID `json:"newJudgeId,omitempty"`
	RoomEmpty  bool      `json:"roomEmpty"`
}

// StartResult describes the transition out of the lobby.
type StartResult struct {
	Round      int       `json:"round"`
	JudgeID    uuid.UUID `json:"judgeId"`
	JudgeName  string    `json:"judgeName"`
	Phase      Phase     `json:"phase"`
	PoolSize   int       `json:"poolSize"`
	Settings   Settings  `json:"settings"`
}

// RollResult describes an alignment roll.
type RollResult struct {
	Alignment   Alignment `json:"alignment"`
	Attempts    int       `json:"attempts"`
	JudgeChoice bool      `json:"judgeChoice"`
	Phase       Phase     `json:"phase"`
}

// AlignmentResult describes the judge's explicit alignment pick.
type AlignmentResult struct {
	Alignment Alignment `json:"alignment"`
	Phase     Phase     `json:"phase"`
}

// PromptsResult describes a prompt draw or reroll.
type PromptsResult struct {
	Prompts    []string `json:"prompts"`
	Rerolled   bool     `json:"rerolled"`
	TokensLeft int      `json:"tokensLeft"`
	Phase      Phase    `json:"phase"`
}

// SelectPromptResult describes the judge committing to a prompt.
type SelectPromptResult struct {
	Prompt       string `json:"prompt"`
	PoolSize     int    `json:"poolSize"`
	TimerSeconds int    `json:"timerSeconds"`
	Phase        Phase  `json:"phase"`
}

// SubmitResult acknowledges a drawing submission.
type SubmitResult struct {
	PlayerID  uuid.UUID `json:"playerId"`
	Submitted int       `json:"submitted"`
	Expected  int       `json:"expected"`
}

// EndDrawingResult carries the snapshotted submissions in randomized
// presentation order.
type EndDrawingResult struct {
	Submissions []Submission `json:"submissions"`
	Phase       Phase        `json:"phase"`
}

// WinnerResult describes the judge's pick and the resulting scores.
type WinnerResult struct {
	WinnerID   uuid.UUID     `json:"winnerId"`
	WinnerName string        `json:"winnerName"`
	Scores     []PlayerScore `json:"scores"`
	GameOver   bool          `json:"gameOver"`
	Phase      Phase         `json:"phase"`
}

// AwardResult describes a bonus-token award.
type AwardResult struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Kind       TokenKind `json:"kind"`
	NewTotal   int       `json:"newTotal"`
}

// StealResult describes a point steal, including the token drain.
type StealResult struct {
	StealerID    uuid.UUID     `json:"stealerId"`
	StealerName  string        `json:"stealerName"`
	TargetID     uuid.UUID     `json:"targetId"`
	TargetName   string        `json:"targetName"`
	StealerScore int           `json:"stealerScore"`
	TargetScore  int           `json:"targetScore"`
	Scores       []PlayerScore `json:"scores"`
	GameOver     bool          `json:"gameOver"`
	Phase        Phase         `json:"phase"`
}

// ModifierCheckResult describes whether the room enters the Modifier phase
// and, if so, who the curser is.
type ModifierCheckResult struct {
	Skipped      bool      `json:"skipped"`
	Reason       string    `json:"reason,omitempty"`
	CurserID     uuid.UUID `json:"curserId,omitempty"`
	CurserName   string    `json:"curserName,omitempty"`
	HasHeldCurse bool      `json:"hasHeldCurse"`
	Phase        Phase     `json:"phase"`
}

// CurseDrawResult describes a drawn (or recalled held) curse.
type CurseDrawResult struct {
	Modifier Modifier `json:"modifier"`
	FromHeld bool     `json:"fromHeld"`
}

// CurseResolveResult describes a curse being assigned or held.
type CurseResolveResult struct {
	CurserID uuid.UUID `json:"curserId"`
	TargetID uuid.UUID `json:"targetId,omitempty"`
	Modifier Modifier  `json:"modifier"`
	Held     bool      `json:"held"`
}

// AdvanceResult describes a round advance: new judge, activated curses, and
// whether the threshold check ended the game instead.
type AdvanceResult struct {
	Round     int               `json:"round"`
	JudgeID   uuid.UUID         `json:"judgeId"`
	JudgeName string            `json:"judgeName"`
	Activated []PendingModifier `json:"activated"`
	GameOver  bool              `json:"gameOver"`
	WinnerID  uuid.UUID         `json:"winnerId,omitempty"`
	Phase     Phase             `json:"phase"`
}

// RoomState is the full public snapshot, sent on connect/reconnect.
type RoomState struct {
	Code           string       `json:"code"`
	Phase          Phase        `json:"phase"`
	Round          int          `json:"round"`
	Players        []PlayerView `json:"players"`
	JudgeID        uuid.UUID    `json:"judgeId,omitempty"`
	HostID         uuid.UUID    `json:"hostId,omitempty"`
	Alignment      Alignment    `json:"alignment,omitempty"`
	Prompts        []string     `json:"prompts,omitempty"`
	SelectedPrompt string       `json:"selectedPrompt,omitempty"`
	Submitted      int          `json:"submitted"`
	Settings       Settings     `json:"settings"`
}
