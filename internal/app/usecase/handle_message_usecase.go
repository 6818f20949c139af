package usecase

import (
	"context"
	"strings"
)

type ToggleExecutor interface {
	Execute(ctx context.Context, input string) (string, error)
}

type StatusExecutor interface {
	Execute(ctx context.Context) (string, error)
}

type HandleMessageUsecase struct {
	toggle ToggleExecutor
	status StatusExecutor
}

func NewHandleMessageUsecase(toggle ToggleExecutor, status StatusExecutor) *HandleMessageUsecase {
	return &HandleMessageUsecase{toggle: toggle, status: status}
}

// Execute routes a chat message. Anything that is not a known command yields
// an empty reply.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, msg string) (string, error) {
	text := strings.TrimSpace(msg)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(text[len(fields[0]):])

	switch cmd {
	case "#quest":
		return uc.toggle.Execute(ctx, arg)
	case "#status", "#quests":
		return uc.status.Execute(ctx)
	default:
		return "", nil
	}
}
