package cel

// FilterExpressionExamples are accepted by the ban list endpoint.
var FilterExpressionExamples = map[string]string{
	"active_only":         `rule.active`,
	"by_issuer":           `rule.issued_by == 12`,
	"channel_wide":        `rule.user == null && rule.command == null`,
	"for_channel":         `rule.channel == 3`,
	"specific_invocation": `rule.invocation == "remindme"`,
	"with_reason":         `rule.response == "Reason"`,
	"combined":            `rule.active && rule.channel == 3 && rule.command != null`,
}
