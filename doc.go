// Package gitkv exposes a remote git repository as a key/value store.
//
// A Repo owns a private working copy cloned into a temporary directory. Keys
// are slash-separated paths relative to the repository root and values are
// file contents. Every operation first fast-forwards the working copy to the
// remote's latest state:
//
//	repo, err := gitkv.New(ctx, "https://example.com/config.git")
//	if err != nil {
//	    return err
//	}
//	defer repo.Close(ctx)
//
//	value, ok, err := repo.Get(ctx, "notes/todo.txt")
//
// Put writes, commits and pushes a single file. A put that cannot be pushed,
// usually because another writer published first, is rolled back locally and
// fails with errors.CodePublishConflict, which is retryable:
//
//	for {
//	    err := repo.Put(ctx, "notes/todo.txt", value)
//	    if !errors.IsRetryable(err) {
//	        return err
//	    }
//	}
//
// A Repo is not safe for concurrent use. Separate handles, in this process or
// elsewhere, may share one remote; push rejection is the only coordination
// between them.
package gitkv
