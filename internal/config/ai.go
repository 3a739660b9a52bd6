package config

type AI string

const (
	AIGemini AI = "gemini"
	AIAzure  AI = "azure"
)

type Model string

const (
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"

	ModelGPTV4o     Model = "gpt-4o"
	ModelGPTV4oMini Model = "gpt-4o-mini"
)

// APIKeyEnv maps every provider to the environment variable holding its key.
var APIKeyEnv = map[AI]string{
	AIGemini: "GEMINI_API_KEY",
	AIAzure:  "OPENAI_API_KEY",
}

func SupportedAIs() []AI {
	return []AI{
		AIGemini,
		AIAzure,
	}
}

func IsSupportedAI(ai AI) bool {
	for _, a := range SupportedAIs() {
		if a == ai {
			return true
		}
	}
	return false
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIGemini:
		return []Model{
			ModelGeminiV25Flash,
			ModelGeminiV25Pro,
			ModelGeminiV25FlashLite,
		}
	case AIAzure:
		return []Model{
			ModelGPTV4o,
			ModelGPTV4oMini,
		}
	default:
		return []Model{}
	}
}

func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
