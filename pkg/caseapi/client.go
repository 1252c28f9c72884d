package caseapi

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/prometheus/client_golang/prometheus"
)

// Getter fetches one record by id.
type Getter[T any] interface {
	Get(ctx context.Context, id ID, params *QueryParams) (*Single[T], error)
	GetRecord(ctx context.Context, id ID, params *QueryParams) (*Single[Record], error)
}

// Lister lists records. A params.PageSize of PageSizeAll walks every page and
// returns one aggregated collection.
type Lister[T any] interface {
	List(ctx context.Context, params *QueryParams) (*PagedCollection[T], error)
	ListRecords(ctx context.Context, params *QueryParams) (*PagedCollection[Record], error)
}

// Creator creates a record.
type Creator[T any] interface {
	Create(ctx context.Context, body *T) (*Single[T], error)
}

// Updater updates a record.
type Updater[T any] interface {
	Update(ctx context.Context, id ID, body *T) (*Single[T], error)
}

// Deleter deletes a record.
type Deleter interface {
	Delete(ctx context.Context, id ID) error
}

// ActionsClient manages actions.
type ActionsClient interface {
	Getter[Action]
	Lister[Action]
	Creator[Action]
	Updater[Action]
	Deleter
}

// ActionTypesClient reads action types.
type ActionTypesClient interface {
	Getter[ActionType]
	Lister[ActionType]
}

// ActionParticipantsClient manages the participants of actions.
type ActionParticipantsClient interface {
	Lister[ActionParticipant]
	Creator[ActionParticipant]
	Deleter
	ListForAction(ctx context.Context, actionID ID) (*PagedCollection[ActionParticipant], error)
}

// ParticipantsClient manages participants.
type ParticipantsClient interface {
	Getter[Participant]
	Lister[Participant]
	Creator[Participant]
	Updater[Participant]
}

// ParticipantTypesClient reads participant types.
type ParticipantTypesClient interface {
	Lister[ParticipantType]
}

// ParticipantDefaultTypesClient reads participant default types.
type ParticipantDefaultTypesClient interface {
	Lister[ParticipantDefaultType]
	GetByTypes(ctx context.Context, actionTypeID, participantTypeID ID) (*Single[ParticipantDefaultType], error)
}

// TasksClient manages tasks.
type TasksClient interface {
	Getter[Task]
	Lister[Task]
	Creator[Task]
	Updater[Task]
	Deleter
	ListByStatus(ctx context.Context, actionID ID, status string) (*PagedCollection[Task], error)
}

// DataCollectionsClient reads data collections.
type DataCollectionsClient interface {
	Lister[DataCollection]
	FindByName(ctx context.Context, actionTypeID ID, name string) (*DataCollection, error)
}

// DataCollectionFieldsClient reads data collection fields.
type DataCollectionFieldsClient interface {
	Lister[DataCollectionField]
}

// DataCollectionRecordsClient manages data collection records.
type DataCollectionRecordsClient interface {
	Lister[DataCollectionRecord]
	Creator[DataCollectionRecord]
	Deleter
}

// DataCollectionRecordValuesClient manages custom field values.
type DataCollectionRecordValuesClient interface {
	Getter[DataCollectionRecordValue]
	Lister[DataCollectionRecordValue]
	Updater[DataCollectionRecordValue]
}

// ActionDocumentsClient manages documents attached to actions.
type ActionDocumentsClient interface {
	Lister[ActionDocument]
	Creator[ActionDocument]
	Deleter
	Attach(ctx context.Context, actionID, folderID ID, fileID ID, name string) (*Single[ActionDocument], error)
}

// ActionFoldersClient manages document folders.
type ActionFoldersClient interface {
	Lister[ActionFolder]
	Creator[ActionFolder]
}

// FileNotesClient manages file notes.
type FileNotesClient interface {
	Lister[FileNote]
	Creator[FileNote]
}

// StepsClient reads workflow steps.
type StepsClient interface {
	Lister[Step]
}

// StepChangeLogsClient resolves transition targets.
type StepChangeLogsClient interface {
	Lister[StepChangeLog]
	FindNode(ctx context.Context, actionID ID, stepName string) (ID, error)
}

// UsersClient reads users.
type UsersClient interface {
	Getter[User]
	Lister[User]
}

// FilesClient uploads binary documents.
type FilesClient interface {
	Upload(ctx context.Context, data []byte) (*FileUpload, error)
}

// FieldValuesClient finds and upserts custom field values on an action.
type FieldValuesClient interface {
	Find(ctx context.Context, actionID ID, group, field string) (*DataCollectionRecordValue, error)
	Upsert(ctx context.Context, actionID ID, group, field, value string) (*DataCollectionRecordValue, error)
}

// CleanupClient removes records in bulk.
type CleanupClient interface {
	DeleteTasksByStatus(ctx context.Context, actionID ID, status string) (int, error)
}

// TransitionsClient moves actions through closing steps.
type TransitionsClient interface {
	CurrentStep(ctx context.Context, actionID ID) (*Step, error)
	Cancel(ctx context.Context, actionID ID) error
	Archive(ctx context.Context, actionID ID) error
	Close(ctx context.Context, actionID ID) error
}

// ClassifierClient derives enum values from custom fields.
type ClassifierClient interface {
	FundingSource(ctx context.Context, actionID ID) (FundingSource, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Actions() ActionsClient
	ActionTypes() ActionTypesClient
	ActionParticipants() ActionParticipantsClient
	Participants() ParticipantsClient
	ParticipantTypes() ParticipantTypesClient
	ParticipantDefaultTypes() ParticipantDefaultTypesClient
	Tasks() TasksClient
	DataCollections() DataCollectionsClient
	DataCollectionFields() DataCollectionFieldsClient
	DataCollectionRecords() DataCollectionRecordsClient
	DataCollectionRecordValues() DataCollectionRecordValuesClient
	ActionDocuments() ActionDocumentsClient
	ActionFolders() ActionFoldersClient
	FileNotes() FileNotesClient
	Steps() StepsClient
	StepChangeLogs() StepChangeLogsClient
	Users() UsersClient
	Files() FilesClient
}

// WorkflowClients provides the composed operations.
type WorkflowClients interface {
	FieldValues() FieldValuesClient
	Cleanup() CleanupClient
	Transitions() TransitionsClient
	Classifier() ClassifierClient
}

// Client is the case-management API client.
type Client interface {
	ResourceClients
	WorkflowClients
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a caseapi.Client.
//
// # Authentication
//
// When AccessToken is set it is sent as a static Bearer token and never
// refreshed. Otherwise TokenURL and APIKey are required: every request fetches
// a fresh token by calling TokenURL with the API key in APIKeyHeader. Setting
// CacheTokens reuses a token for TokenTTL, stored in TokenCache (in memory
// when TokenCache is nil).
//
// A 401 from the API triggers a token refresh and a retry, backing off
// exponentially from AuthFailureBackoffInitialDelay up to
// AuthFailureMaxRetries times.
//
// # Paging
//
// List calls with PageSizeAll are sent with pageSize=MaxPageSize and walked
// page by page.
type Config struct {
	// APIEndpoint: base URL of the API (e.g., "https://api.example.com/api/rest").
	// caseclient.New trims a trailing slash and adds "https://" when no
	// scheme is present.
	APIEndpoint string

	// TokenURL: full URL of the token endpoint.
	TokenURL string
	// APIKey: key sent to the token endpoint.
	APIKey string
	// APIKeyHeader: header carrying APIKey. Defaults to "x-api-key".
	APIKeyHeader string
	// AccessToken: if set, used directly as a Bearer token.
	AccessToken string

	// CacheTokens: reuse fetched tokens for TokenTTL instead of fetching one
	// per request.
	CacheTokens bool
	// TokenTTL: lifetime of a cached token.
	TokenTTL time.Duration
	// TokenCache: cache backend for tokens when CacheTokens is set.
	TokenCache *CacheConfig

	// AuthFailureBackoffInitialDelay: first delay before retrying a 401.
	AuthFailureBackoffInitialDelay time.Duration
	// AuthFailureMaxRetries: refresh-and-retry attempts on 401.
	AuthFailureMaxRetries int

	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). If 0, a default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// HTTPTimeout: per-attempt HTTP timeout.
	HTTPTimeout time.Duration

	// MaxPageSize: page size used when walking every page.
	MaxPageSize int
	// UploadPartSize: bytes per file upload part.
	UploadPartSize int

	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Headers: extra headers sent on every API request.
	Headers map[string]string
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// Metrics: optional Prometheus registerer for request metrics.
	Metrics prometheus.Registerer
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIEndpoint, validation.Required, is.URL),
		validation.Field(&c.TokenURL,
			validation.When(c.AccessToken == "", validation.Required), is.URL),
		validation.Field(&c.APIKey,
			validation.When(c.AccessToken == "", validation.Required)),
		validation.Field(&c.TokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.AuthFailureMaxRetries, validation.Min(0)),
		validation.Field(&c.RetryMax, validation.Min(0)),
		validation.Field(&c.MaxPageSize, validation.Min(0)),
		validation.Field(&c.UploadPartSize, validation.Min(0)),
	)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
