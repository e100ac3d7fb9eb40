/*
Package shablon is a scenario graph engine: it stores questionnaires as graphs of
steps joined by conditional transitions and walks them one answer at a time.

A scenario is authored as a draft with session-local step ids (see pkg/draft),
compiled into a persisted graph in one unit of work and then traversed: at every
step the engine picks the next step from the answers collected so far.

# Routing

Outgoing transitions are evaluated in storage order. The first conditional
transition whose condition holds wins; otherwise the first unconditional one is
taken. A terminal step with no way out finishes the run, any other step with no
way out is a routing failure (domain.ErrRoutingFailure).

Conditions use a small language stored as {"if": "<expr>"}:

	timeOfDay=="evening" && waiting==true || who!="self"

Unparsable fragments are ignored rather than rejected, and an unparsable payload
makes the transition unconditional.

# Usage

	ctx := context.Background()
	eng, err := shablon.Open(ctx, "shablon.db")
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	id, _, err := eng.Seed(ctx, 1)
	if err != nil {
		log.Fatal(err)
	}

	run, err := eng.NewRun(ctx, id)
	if err != nil {
		log.Fatal(err)
	}
	run.Answer("timeOfDay", state.String("evening"))
	next, err := run.Advance(ctx)
*/
package shablon
