package plans

import (
	"concierge/internal/app/commands"
	"concierge/internal/app/queries"
)

// Handlers groups everything Register binds to the buses.
type Handlers struct {
	Generate *GeneratePlanHandler
	Export   *ExportPlanHandler
	Answer   *AnswerQueryHandler
	Latest   *GetLatestPlanHandler
}

func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, h Handlers) {
	if h.Generate != nil {
		commands.RegisterHandler[GeneratePlanCommand, *GeneratePlanResult](cmdBus, generatePlanKey, h.Generate)
	}
	if h.Export != nil {
		commands.RegisterHandler[ExportPlanCommand, *ExportPlanResult](cmdBus, exportPlanKey, h.Export)
	}
	if h.Answer != nil {
		queries.RegisterHandler[AnswerQueryQuery, AnswerQueryResult](queryBus, answerQueryKey, h.Answer)
	}
	if h.Latest != nil {
		queries.RegisterHandler[GetLatestPlanQuery, PlanView](queryBus, latestPlanKey, h.Latest)
	}
}
