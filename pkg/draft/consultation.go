package draft

import "github.com/aretw0/shablon/pkg/domain"

// ConsultationName is the name of the bundled example template.
const ConsultationName = "Consultation booking"

const consultationSummary = `{{if eq .consultation "yes"}}` +
	`{{if eq .timeOfDay "day"}}Good afternoon!{{else}}Good evening!{{end}}
{{if .waiting}}Sorry for the late reply, the last few days have been very busy.{{else}}For a consultation I can offer the nearest dates.{{end}}
{{- with .dates}}
I can offer the following slots:
- {{join (datesByDay .) "\n- "}}{{end}}
{{if eq .who "self"}}Please tell me when it suits you best, with your full name and date of birth, and I will book the visit.` +
	`{{else}}Please tell me when it suits best, with the full name, date of birth and phone number of the person the visit is for.{{end}}

Kind regards,
{{if eq .signature "doctor"}}Dr. Eugene, dentist{{else}}Dr. Anastasia, dentist{{end}}` +
	`{{else}}Thank you for reaching out!
Perhaps we can help another time.{{end}}`

// Consultation returns the example "consultation booking" scenario:
//
//	consultation? -> time of day -> greeting (day|evening) -> long wait? -> date/time
//	-> who books? -> signature -> summary
func Consultation(ownerID int64) domain.Draft {
	b := New(ownerID, ConsultationName).
		Describe("Questionnaire that composes a reply to a consultation request")

	ask := b.Step("Consultation?").Kind(domain.KindQuestion).Start().
		Var("consultation", domain.TypeString, "yes", map[string]any{"values": []string{"yes", "no"}})
	timeOfDay := b.Step("Time of day").Kind(domain.KindBranch)
	day := b.Step("Greeting: day").Kind(domain.KindInfo).Content("Good afternoon!")
	evening := b.Step("Greeting: evening").Kind(domain.KindInfo).Content("Good evening!")
	waiting := b.Step("Long wait?").Kind(domain.KindQuestion)
	when := b.Step("Date/Time").Kind(domain.KindForm).
		Var("date", domain.TypeDate, "", nil).
		Var("hour", domain.TypeInt, "15", nil).
		Var("minute", domain.TypeInt, "00", map[string]any{"roundTo": 15}).
		Var("dates", domain.TypeDateList, "", map[string]any{"minuteInterval": 15, "minCount": 1, "maxCount": 6})
	who := b.Step("Who is booking?").Kind(domain.KindBranch)
	signature := b.Step("Signature").Kind(domain.KindChoice).
		Var("signature", domain.TypeString, "doctor", map[string]any{"values": []string{"doctor", "assistant"}})
	final := b.Step("Summary").Kind(domain.KindSummary).Terminal().Message(consultationSummary)

	ask.Go(timeOfDay, "Next")
	timeOfDay.When(`timeOfDay=="day"`, day, "Day")
	timeOfDay.When(`timeOfDay=="evening"`, evening, "Evening")
	day.Go(waiting, "Next")
	evening.Go(waiting, "Next")
	waiting.When(`waiting==true || waiting==false`, when, "Next")
	when.Go(who, "Next")
	who.When(`who=="self"`, signature, "The patient")
	who.When(`who=="other"`, signature, "Someone else")
	signature.Go(final, "Compose")

	return b.Draft()
}
