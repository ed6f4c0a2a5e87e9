package commands

import "testing"

func TestExecuteDoctor_NoArgsReturnsNonZero(t *testing.T) {
	if code := executeDoctor(nil); code != 1 {
		t.Fatalf("expected exit code 1 for missing command, got %d", code)
	}
}

func TestExecuteDoctor_AliveShortLivedCommand(t *testing.T) {
	if code := executeDoctor([]string{"sh", "-c", "sleep 5"}); code != 0 {
		t.Fatalf("expected exit code 0 for a process that stays alive, got %d", code)
	}
}

func TestExecuteDoctor_UnknownCommandReturnsNonZero(t *testing.T) {
	if code := executeDoctor([]string{"mcpmon-definitely-not-a-real-binary"}); code != 1 {
		t.Fatalf("expected exit code 1 for unspawnable command, got %d", code)
	}
}
