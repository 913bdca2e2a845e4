// Package branchlink links version-control branches to ticket identifiers
// and manages their lifecycle: association, safe checkout with uncommitted
// work protection, auto-detection of candidate links from branch naming
// conventions, and maintenance diagnostics for stale, old, and duplicate
// links.
//
// The Manager composes three collaborators, each injected at construction:
//
//   - git.Context: subprocess bridge to the local git executable
//   - store.Store: durable association + history records over a KV port
//   - pattern.Grammar: pure ticket-id extraction from branch names
//
// Example usage:
//
//	gitCtx, err := git.NewContext("/path/to/repo")
//	kv, err := store.NewFileKV("/path/to/state")
//	mgr := branchlink.New(gitCtx, store.New(kv))
//
//	err = mgr.Associate(ctx, "ENG-123", "feature/eng-123-fix-login")
//	result, err := mgr.CheckoutForTicket(ctx, "ENG-123", branchlink.DecisionUnset)
//	if result.NeedsDecision {
//	    // present stash / checkout anyway / cancel to the user,
//	    // then call CheckoutForTicket again with the choice
//	}
package branchlink
