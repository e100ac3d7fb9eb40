/*
Package draft builds author-time scenario graphs.

A draft is keyed by local identifiers handed out sequentially from 1. It is
turned into a persisted graph by the compiler, which assigns storage ids.

Drafts can be built in Go with the fluent Builder:

	b := draft.New(1, "Onboarding")
	ask := b.Step("Ready?").Kind(domain.KindQuestion).Start()
	done := b.Step("Done").Kind(domain.KindSummary).Terminal()
	ask.When(`ready==true`, done, "Yes")

or loaded from YAML with LoadYAML.
*/
package draft
