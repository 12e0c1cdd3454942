package models

type APIType string

const (
	APITypeOpenAI    APIType = "openai"
	APITypeAzure     APIType = "azure"
	APITypeDeepseek  APIType = "deepseek"
	APITypeGoogle    APIType = "google"
	APITypeAnthropic APIType = "anthropic"
	APITypeCohere    APIType = "cohere"
	APITypeMistral   APIType = "mistral"
	APITypeGroq      APIType = "groq"
	APITypeTogether  APIType = "together"
	APITypeNim       APIType = "nim"
	APITypeBedrock   APIType = "bedrock"
	APITypeOther     APIType = "other"
)

// KnownAPIType reports whether t is a recognized endpoint type.
func KnownAPIType(t APIType) bool {
	switch t {
	case APITypeOpenAI, APITypeAzure, APITypeDeepseek, APITypeGoogle, APITypeAnthropic,
		APITypeCohere, APITypeMistral, APITypeGroq, APITypeTogether, APITypeNim,
		APITypeBedrock, APITypeOther:
		return true
	}
	return false
}

type ModelPrice struct {
	PromptPricePer1K     *float64 `json:"promptPricePer1k"`
	CompletionTokenPrice *float64 `json:"completionTokenPricePer1k"`
}

type AWSCredentials struct {
	Region       string `json:"region,omitempty"`
	AccessKey    string `json:"accessKey,omitempty"`
	SecretKey    string `json:"secretKey,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
	ProfileName  string `json:"profileName,omitempty"`
}

type ModelData struct {
	BaseURL        string            `json:"baseUrl"`
	APIKey         string            `json:"apiKey"`
	APIType        APIType           `json:"apiType"`
	APIVersion     string            `json:"apiVersion"`
	Temperature    *float64          `json:"temperature"`
	TopP           *float64          `json:"topP"`
	MaxTokens      *int              `json:"maxTokens"`
	DefaultHeaders map[string]string `json:"defaultHeaders"`
	Price          ModelPrice        `json:"price"`
	AWS            *AWSCredentials   `json:"aws,omitempty"`
	Extras         map[string]any    `json:"extras"`
}

// Model is one LLM endpoint configuration. Name doubles as the model
// identifier sent to the provider.
type Model struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Requirements []string       `json:"requirements"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
	Data         ModelData      `json:"data"`
	Rest         map[string]any `json:"-"`
}

// NewModelData returns model data with defaults applied.
func NewModelData() ModelData {
	return ModelData{
		APIType:        APITypeOther,
		DefaultHeaders: map[string]string{},
		Extras:         map[string]any{},
	}
}
