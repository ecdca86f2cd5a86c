package chat

import "testing"

func TestBuildTurnWindow(t *testing.T) {
	msgs := []Message{
		{Content: "one"}, {Content: "two"}, {Content: "three"}, {Content: "four"},
	}

	window := BuildTurnWindow(msgs, 2)
	if len(window) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(window))
	}
	if window[0].Content != "three" || window[1].Content != "four" {
		t.Errorf("window must keep the latest messages in order: %v", window)
	}
}

func TestBuildTurnWindow_SmallTranscript(t *testing.T) {
	msgs := []Message{{Content: "only"}}
	if got := BuildTurnWindow(msgs, 5); len(got) != 1 {
		t.Errorf("short transcripts pass through untouched, got %d", len(got))
	}
}

func TestBuildTurnWindow_ZeroLimit(t *testing.T) {
	msgs := []Message{{Content: "a"}, {Content: "b"}}
	if got := BuildTurnWindow(msgs, 0); len(got) != 2 {
		t.Errorf("non-positive limit disables windowing, got %d", len(got))
	}
}

func TestMessage_Line(t *testing.T) {
	anna := Message{Speaker: SpeakerAssistant, Content: "Hi!"}
	user := Message{Speaker: SpeakerUser, Content: "Hello"}

	if anna.Line() != "Anna: Hi!" {
		t.Errorf("unexpected assistant line: %q", anna.Line())
	}
	if user.Line() != "User: Hello" {
		t.Errorf("unexpected user line: %q", user.Line())
	}
}
