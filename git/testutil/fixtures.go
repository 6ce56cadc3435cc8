package testutil

// Test user information used across all test helpers.
const (
	// TestAuthor is the default author name for test commits.
	TestAuthor = "Test User"

	// TestEmail is the default email for test commits.
	TestEmail = "test@example.com"

	// TestAuthor2 is an alternate author used to simulate a second writer.
	TestAuthor2 = "Another User"

	// TestEmail2 is the alternate writer's email.
	TestEmail2 = "another@example.com"
)

// Test commit messages.
const (
	// TestInitialCommit is the message of the commit that seeds a remote.
	TestInitialCommit = "Initial commit"

	// TestCommitMessage is a standard test commit message.
	TestCommitMessage = "Test commit"
)

// Test file paths and contents seeded into remotes.
const (
	// TestFilePath is a top-level file present in every seeded remote.
	TestFilePath = "README.md"

	// TestFileContent is the content of TestFilePath.
	TestFileContent = "# Test Repository\n\nThis is a test repository.\n"

	// TestNestedPath is a file inside a subdirectory.
	TestNestedPath = "notes/todo.txt"

	// TestNestedContent is the content of TestNestedPath.
	TestNestedContent = "buy milk"
)

// DefaultFiles returns the files every seeded remote starts with.
func DefaultFiles() map[string]string {
	return map[string]string{
		TestFilePath:   TestFileContent,
		TestNestedPath: TestNestedContent,
	}
}
