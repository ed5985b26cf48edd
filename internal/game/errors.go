// internal/game/errors.go
package game

import "errors"

// Validation errors. Non-fatal: the action is rejected and room state is
// left unchanged.
var (
	ErrRoomClosed         = errors.New("room is closed")
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrNotHost            = errors.New("host-only action")
	ErrNotJudge           = errors.New("judge-only action")
	ErrJudgeForbidden     = errors.New("judge cannot perform this action")
	ErrNotCurser          = errors.New("curser-only action")
	ErrRoomFull           = errors.New("room is full")
	ErrGameInProgress     = errors.New("game already in progress")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrInvalidName        = errors.New("invalid player name")
	ErrNameTaken          = errors.New("name already taken")
	ErrInvalidAvatar      = errors.New("unknown avatar")
	ErrAvatarTaken        = errors.New("avatar already taken")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNoDecksSelected    = errors.New("no valid prompt deck selected")
	ErrInvalidAlignment   = errors.New("invalid alignment selection")
	ErrInvalidPromptIndex = errors.New("invalid prompt index")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrKindAlreadyGiven   = errors.New("token kind already awarded this round")
	ErrInvalidTokenKind   = errors.New("unknown token kind")
	ErrNoCurseDrawn       = errors.New("no curse drawn")
	ErrNoHeldCurse        = errors.New("no held curse")
	ErrCurseUnresolved    = errors.New("curse must be applied or held first")
	ErrCurseResolved      = errors.New("curse already resolved")
)

// ErrPoolExhausted is round-fatal: fewer than 3 prompts remain, so the round
// cannot proceed as designed. Surfaced to the host for manual resolution,
// never auto-recovered.
var ErrPoolExhausted = errors.New("prompt pool exhausted")
