package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fardannozami/quest-tracker/internal/app/usecase"
	"github.com/fardannozami/quest-tracker/internal/clock"
	"github.com/fardannozami/quest-tracker/internal/domain"
)

// =============================================================================
// HANDLE MESSAGE USECASE TESTS
// =============================================================================
//
// Tests command routing logic:
// - #quest <arg> → routes to ToggleQuestUsecase with <arg>
// - #status / #quests → routes to GetStatusUsecase
// - Unknown commands → returns empty string (no response)
//
// =============================================================================

type mockToggleUsecase struct {
	called   bool
	input    string
	response string
}

func (m *mockToggleUsecase) Execute(ctx context.Context, input string) (string, error) {
	m.called = true
	m.input = input
	return m.response, nil
}

type mockStatusUsecase struct {
	called   bool
	response string
}

func (m *mockStatusUsecase) Execute(ctx context.Context) (string, error) {
	m.called = true
	return m.response, nil
}

func TestHandleMessage_QuestCommand(t *testing.T) {
	toggle := &mockToggleUsecase{response: "ok"}
	status := &mockStatusUsecase{response: "board"}
	handleUC := usecase.NewHandleMessageUsecase(toggle, status)

	msg, err := handleUC.Execute(context.Background(), "#quest Pedido de Caça")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg != "ok" {
		t.Errorf("Expected 'ok', got '%s'", msg)
	}
	if !toggle.called {
		t.Fatal("Toggle usecase should have been called")
	}
	if toggle.input != "Pedido de Caça" {
		t.Errorf("Expected argument 'Pedido de Caça', got '%s'", toggle.input)
	}
	if status.called {
		t.Error("Status usecase should not have been called")
	}
}

func TestHandleMessage_QuestCaseInsensitive(t *testing.T) {
	testCases := []string{"#QUEST 1", "#Quest 1", "#qUeSt 1", "#quest 1"}
	for _, cmd := range testCases {
		toggle := &mockToggleUsecase{response: "ok"}
		handleUC := usecase.NewHandleMessageUsecase(toggle, &mockStatusUsecase{})

		msg, err := handleUC.Execute(context.Background(), cmd)
		if err != nil {
			t.Fatalf("Unexpected error for '%s': %v", cmd, err)
		}
		if msg == "" || toggle.input != "1" {
			t.Errorf("Command '%s' should route to toggle with '1', got input '%s'", cmd, toggle.input)
		}
	}
}

func TestHandleMessage_StatusCommand(t *testing.T) {
	testCases := []string{"#status", "#STATUS", "#quests", "#Quests", "  #status  "}
	for _, cmd := range testCases {
		status := &mockStatusUsecase{response: "board"}
		handleUC := usecase.NewHandleMessageUsecase(&mockToggleUsecase{}, status)

		msg, err := handleUC.Execute(context.Background(), cmd)
		if err != nil {
			t.Fatalf("Unexpected error for '%s': %v", cmd, err)
		}
		if msg != "board" || !status.called {
			t.Errorf("Command '%q' should return the board, got '%s'", cmd, msg)
		}
	}
}

func TestHandleMessage_UnknownCommand_ReturnsEmpty(t *testing.T) {
	toggle := &mockToggleUsecase{response: "ok"}
	status := &mockStatusUsecase{response: "board"}
	handleUC := usecase.NewHandleMessageUsecase(toggle, status)

	testCases := []string{
		"hello",
		"random message",
		"#invalid",
		"#questing 1",
		"quest 1",  // missing #
		"status",   // missing #
		"",
		"   \n\t ",
	}

	for _, msg := range testCases {
		result, err := handleUC.Execute(context.Background(), msg)
		if err != nil {
			t.Fatalf("Unexpected error for '%s': %v", msg, err)
		}
		if result != "" {
			t.Errorf("Unknown command '%s' should return empty string, got '%s'", msg, result)
		}
	}
	if toggle.called || status.called {
		t.Error("No usecase should have been called")
	}
}

func TestHandleMessage_WhitespaceHandling(t *testing.T) {
	testCases := []string{
		"  #quest Infernal",
		"#quest Infernal  ",
		"\t#quest   Infernal\n",
	}

	for i, cmd := range testCases {
		toggle := &mockToggleUsecase{response: "ok"}
		handleUC := usecase.NewHandleMessageUsecase(toggle, &mockStatusUsecase{})

		if _, err := handleUC.Execute(context.Background(), cmd); err != nil {
			t.Fatalf("Test %d: Unexpected error for '%q': %v", i, cmd, err)
		}
		if toggle.input != "Infernal" {
			t.Errorf("Test %d: Command '%q' should pass 'Infernal', got '%s'", i, cmd, toggle.input)
		}
	}
}

// =============================================================================
// END-TO-END WITH A REAL TRACKER
// =============================================================================

func newChatStack() (*usecase.HandleMessageUsecase, *usecase.TrackerUsecase) {
	tracker := newTracker(newMockStore(), clock.NewFake(noon), &mockFlash{})
	return usecase.NewHandleMessageUsecase(
		usecase.NewToggleQuestUsecase(tracker),
		usecase.NewGetStatusUsecase(tracker),
	), tracker
}

func TestToggleQuest_Replies(t *testing.T) {
	handleUC, tracker := newChatStack()
	ctx := context.Background()

	msg, err := handleUC.Execute(ctx, "#quest check-in")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "✅ Check-in done! +15 XP (Level 1, 15 XP). 1/7 today."
	if msg != expected {
		t.Errorf("Expected '%s', got '%s'", expected, msg)
	}

	msg, err = handleUC.Execute(ctx, "#quest 1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected = "↩️ Check-in marked as not done. -15 XP (Level 1, 0 XP). 0/7 today."
	if msg != expected {
		t.Errorf("Expected '%s', got '%s'", expected, msg)
	}

	if p := tracker.Snapshot(); p.State.XP != 0 || p.State.TotalCompleted != 0 {
		t.Errorf("Expected default-equivalent state, got %+v", p.State)
	}
}

func TestToggleQuest_UnknownAndMissing(t *testing.T) {
	handleUC, tracker := newChatStack()
	ctx := context.Background()

	msg, err := handleUC.Execute(ctx, "#quest Raid")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(msg, "Unknown quest \"Raid\"") {
		t.Errorf("Expected unknown quest reply, got '%s'", msg)
	}

	msg, _ = handleUC.Execute(ctx, "#quest")
	if !strings.HasPrefix(msg, "Usage:") {
		t.Errorf("Expected usage reply, got '%s'", msg)
	}

	if p := tracker.Snapshot(); len(p.State.Completed) != 0 {
		t.Errorf("Invalid input must not change state, got %v", p.State.Completed)
	}
}

func TestToggleQuest_AllComplete(t *testing.T) {
	handleUC, _ := newChatStack()
	ctx := context.Background()

	var msg string
	for i := range domain.DefaultCatalog {
		var err error
		msg, err = handleUC.Execute(ctx, "#quest "+string(rune('1'+i)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if !strings.Contains(msg, "All quests complete") {
		t.Errorf("Last completion should announce all complete, got '%s'", msg)
	}
}

func TestGetStatus_Board(t *testing.T) {
	handleUC, _ := newChatStack()
	ctx := context.Background()

	if _, err := handleUC.Execute(ctx, "#quest Infernal"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	board, err := handleUC.Execute(ctx, "#status")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{
		"Quest Tracker – 2026-10-14",
		"Level 1 · 15/100 XP",
		"0 days streak",
		"Today: 1/7 (14%)",
		"1. ⬜ Check-in\n",
		"4. ✅ Infernal ✨\n",
		"7. ⬜ Intel Report\n",
		"Total completed: 1",
	} {
		if !strings.Contains(board, want) {
			t.Errorf("Board should contain '%s', got:\n%s", want, board)
		}
	}
	if strings.Contains(board, "All quests complete") {
		t.Error("Board should not announce completion yet")
	}
}
