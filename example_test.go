package shablon_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/pkg/adapters/memory"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/aretw0/shablon/pkg/state"
)

// ExampleEngine_NextStep compiles a small branching graph in memory and walks it.
func ExampleEngine_NextStep() {
	ctx := context.Background()
	eng, err := shablon.New(memory.NewStore())
	if err != nil {
		log.Fatal(err)
	}

	b := draft.New(1, "greeting")
	q := b.Step("Time of day").Start()
	day := b.Step("Good afternoon").Terminal()
	evening := b.Step("Good evening").Terminal()
	q.When(`timeOfDay=="day"`, day, "Day")
	q.When(`timeOfDay=="evening"`, evening, "Evening")

	rep, err := eng.CompileGraph(ctx, b.Draft())
	if err != nil {
		log.Fatal(err)
	}

	current, err := eng.StartStep(ctx, rep.TemplateID)
	if err != nil {
		log.Fatal(err)
	}
	answers := state.New()
	answers.Set("timeOfDay", state.String("evening"))

	for {
		fmt.Println(current.Title)
		next, err := eng.NextStep(ctx, current, answers)
		if err != nil {
			log.Fatal(err)
		}
		if next == nil {
			break
		}
		current = *next
	}
	// Output:
	// Time of day
	// Good evening
}
