/*
Package condition implements the boolean micro-language guarding transitions.

An expression is a list of OR-groups separated by "||"; each group is a list of
AND-clauses separated by "&&". A clause compares a snapshot key with a literal:

	timeOfDay=="evening"
	waiting==true || waiting==false
	who!="self" && note contains "urgent"

Literals are text: one layer of surrounding quotes is stripped and the rest is kept
as a string, so rooms==2 and rooms=="2" are the same clause. Stored strings compare
with the literal; stored booleans match the literals true/false under "=="; any
other stored type (integers included) never equals a literal, so "!=" holds for it. Whitespace around tokens is insignificant.

Parsing never fails. Fragments that do not form a clause are dropped and listed in
Expression.Ignored, so an expression that only contained malformed fragments routes
exactly like an unconditional transition. Callers that author conditions can inspect
Ignored to surface the mistake without changing routing.
*/
package condition
