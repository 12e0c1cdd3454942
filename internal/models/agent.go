package models

type AgentType string

const (
	AgentTypeUserProxy    AgentType = "user_proxy"
	AgentTypeAssistant    AgentType = "assistant"
	AgentTypeGroupManager AgentType = "group_manager"
	AgentTypeDocAgent     AgentType = "doc_agent"
	AgentTypeCaptain      AgentType = "captain"
	AgentTypeReasoning    AgentType = "reasoning"
	AgentTypeRemote       AgentType = "remote"
	AgentTypeOther        AgentType = "other"
)

// KnownAgentType reports whether t is one of the concrete agent variants.
// AgentTypeOther is the fallback bucket, not a declared variant.
func KnownAgentType(t AgentType) bool {
	switch t {
	case AgentTypeUserProxy, AgentTypeAssistant, AgentTypeGroupManager, AgentTypeDocAgent,
		AgentTypeCaptain, AgentTypeReasoning, AgentTypeRemote:
		return true
	}
	return false
}

type HumanInputMode string

const (
	HumanInputAlways    HumanInputMode = "ALWAYS"
	HumanInputNever     HumanInputMode = "NEVER"
	HumanInputTerminate HumanInputMode = "TERMINATE"
)

// DefaultHumanInputMode is the variant-appropriate default: user proxies ask
// every turn, everything else never does.
func DefaultHumanInputMode(t AgentType) HumanInputMode {
	if t == AgentTypeUserProxy {
		return HumanInputAlways
	}
	return HumanInputNever
}

// CodeExecutionConfig describes how an agent runs code blocks. A nil pointer
// on AgentData means code execution is disabled (JSON literal false).
type CodeExecutionConfig struct {
	WorkDir       string   `json:"workDir,omitempty"`
	UseDocker     *bool    `json:"useDocker,omitempty"`
	Timeout       *int     `json:"timeout,omitempty"`
	LastNMessages *int     `json:"lastNMessages,omitempty"`
	Functions     []string `json:"functions,omitempty"`
}

type TerminationType string

const (
	TerminationNone    TerminationType = "none"
	TerminationKeyword TerminationType = "keyword"
	TerminationMethod  TerminationType = "method"
)

type TerminationCriterion string

const (
	CriterionFound    TerminationCriterion = "found"
	CriterionEnding   TerminationCriterion = "ending"
	CriterionStarting TerminationCriterion = "starting"
	CriterionExact    TerminationCriterion = "exact"
)

type TerminationConfig struct {
	Type          TerminationType      `json:"type"`
	Keywords      []string             `json:"keywords"`
	Criterion     TerminationCriterion `json:"criterion"`
	MethodContent string               `json:"methodContent"`
}

// ToolLink ties an agent to a tool, optionally naming the agent that
// executes it.
type ToolLink struct {
	ID         string `json:"id"`
	ExecutorID string `json:"executorId,omitempty"`
}

// NestedChatRef is one message slot inside a nested-chat configuration.
type NestedChatRef struct {
	ID      string `json:"id"`
	IsReply bool   `json:"isReply"`
}

type NestedChatConfig struct {
	TriggeredBy []string        `json:"triggeredBy"`
	Messages    []NestedChatRef `json:"messages"`
}

type SpeakerSelectionMethod string

const (
	SpeakerSelectionAuto       SpeakerSelectionMethod = "auto"
	SpeakerSelectionManual     SpeakerSelectionMethod = "manual"
	SpeakerSelectionRandom     SpeakerSelectionMethod = "random"
	SpeakerSelectionRoundRobin SpeakerSelectionMethod = "round_robin"
	SpeakerSelectionCustom     SpeakerSelectionMethod = "custom"
)

type SpeakersConfig struct {
	SelectionMethod       SpeakerSelectionMethod `json:"selectionMethod"`
	SelectionCustomMethod string                 `json:"selectionCustomMethod"`
	MaxRetriesForSelect   *int                   `json:"maxRetriesForSelecting,omitempty"`
	TransitionsType       string                 `json:"transitionsType"` // "allowed" | "disallowed"
	Transitions           map[string][]string    `json:"allowedOrDisallowedTransitions"`
}

// GroupManagerData is the payload specific to group-manager agents.
type GroupManagerData struct {
	MaxRound       int            `json:"maxRound"`
	AdminName      string         `json:"adminName"`
	InitialAgentID string         `json:"initialAgentId"`
	Speakers       SpeakersConfig `json:"speakers"`
}

type QueryEngineConfig struct {
	Type              string `json:"type"`
	DBPath            string `json:"dbPath"`
	EnableCitations   bool   `json:"enableQueryCitations"`
	CitationChunkSize *int   `json:"citationChunkSize,omitempty"`
}

// DocAgentData is the payload specific to document agents.
type DocAgentData struct {
	CollectionName  string             `json:"collectionName"`
	ResetCollection bool               `json:"resetCollection"`
	ParsedDocsPath  string             `json:"parsedDocsPath"`
	QueryEngine     *QueryEngineConfig `json:"queryEngine,omitempty"`
}

type AgentLibEntry struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	SystemMessage string `json:"systemMessage"`
}

// CaptainData is the payload specific to captain agents.
type CaptainData struct {
	AgentLib []AgentLibEntry `json:"agentLib"`
	ToolLib  string          `json:"toolLib"` // "default" or ""
	MaxRound int             `json:"maxRound"`
	MaxTurns int             `json:"maxTurns"`
}

type ReasonConfig struct {
	Method              string  `json:"method"` // beam_search | mcts | lats | dfs
	MaxDepth            int     `json:"maxDepth"`
	ForestSize          int     `json:"forestSize"`
	RatingScale         int     `json:"ratingScale"`
	BeamSize            int     `json:"beamSize"`
	AnswerApproach      string  `json:"answerApproach"` // pool | best
	Nsim                int     `json:"nsim"`
	ExplorationConstant float64 `json:"explorationConstant"`
}

// ReasoningData is the payload specific to reasoning agents.
type ReasoningData struct {
	Verbose      bool         `json:"verbose"`
	ReasonConfig ReasonConfig `json:"reasonConfig"`
}

// RemoteData is the payload specific to remote agents.
type RemoteData struct {
	URL string `json:"url"`
}

// AgentData is the behavior configuration shared by every variant, plus one
// optional variant payload selected by the owning agent's AgentType.
type AgentData struct {
	SystemMessage         string               `json:"systemMessage"`
	HumanInputMode        HumanInputMode       `json:"humanInputMode"`
	CodeExecution         *CodeExecutionConfig `json:"codeExecutionConfig,omitempty"`
	AgentDefaultAutoReply string               `json:"agentDefaultAutoReply"`
	MaxConsecutiveReply   *int                 `json:"maxConsecutiveAutoReply,omitempty"`
	Termination           TerminationConfig    `json:"termination"`
	ModelIDs              []string             `json:"modelIds"`
	Tools                 []ToolLink           `json:"tools"`
	NestedChats           []NestedChatConfig   `json:"nestedChats"`
	Handoffs              []string             `json:"handoffs"`
	AfterWork             *TransitionTarget    `json:"afterWork,omitempty"`
	ContextVariables      map[string]any       `json:"contextVariables"`
	ParentID              string               `json:"parentId,omitempty"`

	GroupManager *GroupManagerData `json:"groupManager,omitempty"`
	Doc          *DocAgentData     `json:"doc,omitempty"`
	Captain      *CaptainData      `json:"captain,omitempty"`
	Reasoning    *ReasoningData    `json:"reasoning,omitempty"`
	Remote       *RemoteData       `json:"remote,omitempty"`
}

// Agent is one participant in the conversation graph.
type Agent struct {
	ID           string         `json:"id"`
	AgentType    AgentType      `json:"agentType"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Requirements []string       `json:"requirements"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
	Data         AgentData      `json:"data"`
	Rest         map[string]any `json:"-"`
}

// NewAgentData returns agent data with variant-appropriate defaults, safe to
// use directly without going through a mapper.
func NewAgentData(t AgentType) AgentData {
	d := AgentData{
		HumanInputMode:        DefaultHumanInputMode(t),
		AgentDefaultAutoReply: "",
		Termination:           TerminationConfig{Type: TerminationNone, Keywords: []string{}, Criterion: CriterionFound},
		ModelIDs:              []string{},
		Tools:                 []ToolLink{},
		NestedChats:           []NestedChatConfig{},
		Handoffs:              []string{},
		ContextVariables:      map[string]any{},
	}
	switch t {
	case AgentTypeGroupManager:
		d.GroupManager = &GroupManagerData{
			MaxRound: 20,
			Speakers: SpeakersConfig{
				SelectionMethod: SpeakerSelectionAuto,
				TransitionsType: "allowed",
				Transitions:     map[string][]string{},
			},
		}
	case AgentTypeDocAgent:
		d.Doc = &DocAgentData{}
	case AgentTypeCaptain:
		d.Captain = &CaptainData{AgentLib: []AgentLibEntry{}, MaxRound: 10, MaxTurns: 5}
	case AgentTypeReasoning:
		d.Reasoning = &ReasoningData{
			ReasonConfig: ReasonConfig{
				Method:              "beam_search",
				MaxDepth:            3,
				ForestSize:          1,
				RatingScale:         10,
				BeamSize:            3,
				AnswerApproach:      "pool",
				Nsim:                3,
				ExplorationConstant: 1.41,
			},
		}
	case AgentTypeRemote:
		d.Remote = &RemoteData{}
	}
	return d
}
