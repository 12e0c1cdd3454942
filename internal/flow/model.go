package flow

import "github.com/waldiez/waldiez-go/internal/models"

// ImportModel builds a typed model from an untyped JSON object. Every field
// degrades to its default on type mismatch.
func ImportModel(raw map[string]any) *models.Model {
	m := &models.Model{
		ID:           idOf(raw),
		Name:         stringOr(raw, "name", "Model"),
		Description:  stringOr(raw, "description", "A new model"),
		Tags:         stringList(raw, "tags"),
		Requirements: stringList(raw, "requirements"),
		CreatedAt:    timestampOr(raw, "createdAt"),
		UpdatedAt:    timestampOr(raw, "updatedAt"),
		Data:         models.NewModelData(),
		Rest:         restOf(raw, commonKeys...),
	}
	data, ok := mapField(raw, "data")
	if !ok {
		return m
	}

	m.Data.BaseURL = stringOr(data, "baseUrl", "")
	m.Data.APIKey = stringOr(data, "apiKey", "")
	if t := models.APIType(stringOr(data, "apiType", "")); models.KnownAPIType(t) {
		m.Data.APIType = t
	}
	m.Data.APIVersion = stringOr(data, "apiVersion", "")
	m.Data.Temperature = floatPtr(data, "temperature")
	m.Data.TopP = floatPtr(data, "topP")
	m.Data.MaxTokens = intPtr(data, "maxTokens")
	m.Data.DefaultHeaders = stringMapOf(data, "defaultHeaders")
	m.Data.Extras = anyMapOf(data, "extras")

	if price, ok := mapField(data, "price"); ok {
		m.Data.Price.PromptPricePer1K = floatPtr(price, "promptPricePer1k")
		m.Data.Price.CompletionTokenPrice = floatPtr(price, "completionTokenPricePer1k")
	}

	if aws, ok := mapField(data, "aws"); ok {
		m.Data.AWS = &models.AWSCredentials{
			Region:       stringOr(aws, "region", ""),
			AccessKey:    stringOr(aws, "accessKey", ""),
			SecretKey:    stringOr(aws, "secretKey", ""),
			SessionToken: stringOr(aws, "sessionToken", ""),
			ProfileName:  stringOr(aws, "profileName", ""),
		}
	}
	return m
}

// ExportModel flattens a typed model back to plain JSON. With hideSecrets the
// API key and AWS credential values are replaced by the redaction sentinel.
func ExportModel(m *models.Model, hideSecrets bool) map[string]any {
	apiKey := m.Data.APIKey
	if hideSecrets && apiKey != "" {
		apiKey = Redacted
	}

	price := map[string]any{}
	if m.Data.Price.PromptPricePer1K != nil {
		price["promptPricePer1k"] = *m.Data.Price.PromptPricePer1K
	}
	if m.Data.Price.CompletionTokenPrice != nil {
		price["completionTokenPricePer1k"] = *m.Data.Price.CompletionTokenPrice
	}

	data := map[string]any{
		"baseUrl":        m.Data.BaseURL,
		"apiKey":         apiKey,
		"apiType":        string(m.Data.APIType),
		"apiVersion":     m.Data.APIVersion,
		"defaultHeaders": toAnyMap(m.Data.DefaultHeaders),
		"price":          price,
		"extras":         m.Data.Extras,
	}
	if m.Data.Temperature != nil {
		data["temperature"] = *m.Data.Temperature
	}
	if m.Data.TopP != nil {
		data["topP"] = *m.Data.TopP
	}
	if m.Data.MaxTokens != nil {
		data["maxTokens"] = float64(*m.Data.MaxTokens)
	}
	if m.Data.AWS != nil {
		data["aws"] = awsMap(m.Data.AWS, hideSecrets)
	}

	out := map[string]any{
		"id":           m.ID,
		"type":         "model",
		"name":         m.Name,
		"description":  m.Description,
		"tags":         toAnyList(m.Tags),
		"requirements": toAnyList(m.Requirements),
		"createdAt":    m.CreatedAt,
		"updatedAt":    m.UpdatedAt,
		"data":         data,
	}
	mergeRest(out, m.Rest)
	return out
}

func awsMap(aws *models.AWSCredentials, hideSecrets bool) map[string]any {
	redact := func(v string) any {
		if hideSecrets && v != "" {
			return Redacted
		}
		return v
	}
	out := map[string]any{}
	if aws.Region != "" {
		out["region"] = aws.Region
	}
	if aws.AccessKey != "" {
		out["accessKey"] = redact(aws.AccessKey)
	}
	if aws.SecretKey != "" {
		out["secretKey"] = redact(aws.SecretKey)
	}
	if aws.SessionToken != "" {
		out["sessionToken"] = redact(aws.SessionToken)
	}
	if aws.ProfileName != "" {
		out["profileName"] = aws.ProfileName
	}
	return out
}

// ModelNode projects a model onto the graph at the given position, falling
// back to the position recorded in its rest bag.
func ModelNode(m *models.Model, pos *models.Position) models.Node {
	return models.Node{
		ID:       m.ID,
		Type:     "model",
		Position: nodePosition(m.Rest, pos),
	}
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
