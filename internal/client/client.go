package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/caseapi-client/internal/auth"
	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/internal/http"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Static errors for err113 compliance.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
)

// Client implements the caseapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	base         *resourceBase

	// Resource clients
	actions                    *ActionsClient
	actionTypes                *ActionTypesClient
	actionParticipants         *ActionParticipantsClient
	participants               *ParticipantsClient
	participantTypes           *ParticipantTypesClient
	participantDefaultTypes    *ParticipantDefaultTypesClient
	tasks                      *TasksClient
	dataCollections            *DataCollectionsClient
	dataCollectionFields       *DataCollectionFieldsClient
	dataCollectionRecords      *DataCollectionRecordsClient
	dataCollectionRecordValues *DataCollectionRecordValuesClient
	actionDocuments            *ActionDocumentsClient
	actionFolders              *ActionFoldersClient
	fileNotes                  *FileNotesClient
	steps                      *StepsClient
	stepChangeLogs             *StepChangeLogsClient
	users                      *UsersClient
	files                      *FilesClient

	// Workflows
	fieldValues *FieldValuesClient
	cleanup     *CleanupClient
	transitions *TransitionsClient
	classifier  *ClassifierClient
}

// createTokenManager picks the token manager for config: a static token, or
// the API-key flow, optionally behind a token cache.
func createTokenManager(ctx context.Context, config *caseapi.Config, logger caseapi.Logger) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken), nil
	}

	apiKeyManager, err := auth.NewAPIKeyTokenManager(&auth.APIKeyConfig{
		TokenURL: config.TokenURL,
		APIKey:   config.APIKey,
		Header:   config.APIKeyHeader,
	})
	if err != nil {
		return nil, fmt.Errorf("creating token manager: %w", err)
	}

	if !config.CacheTokens {
		return apiKeyManager, nil
	}

	cache, err := caseapi.NewCacheFromConfig(ctx, config.TokenCache)
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}

	scope := config.TokenURL + "\x00" + config.APIKey

	return auth.NewCachingTokenManager(apiKeyManager, cache, scope, config.TokenTTL, logger), nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *caseapi.Config, logger caseapi.Logger, chain *caseapi.InterceptorChain) []http.Option {
	httpOpts := []http.Option{
		http.WithLogger(logger),
		http.WithInterceptors(chain),
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.AuthFailureBackoffInitialDelay > 0 || config.AuthFailureMaxRetries > 0 {
		initial := constants.DefaultAuthFailureBackoffInitialDelay
		maxRetries := constants.DefaultAuthFailureMaxRetries

		if config.AuthFailureBackoffInitialDelay > 0 {
			initial = config.AuthFailureBackoffInitialDelay
		}

		if config.AuthFailureMaxRetries > 0 {
			maxRetries = config.AuthFailureMaxRetries
		}

		httpOpts = append(httpOpts, http.WithAuthFailureBackoff(initial, maxRetries))
	}

	return httpOpts
}

// createInterceptors builds the chain every request runs through: extra
// headers, failure logging, and Prometheus metrics when a registerer is
// configured.
func createInterceptors(config *caseapi.Config, logger caseapi.Logger) (*caseapi.InterceptorChain, *caseapi.Metrics, error) {
	chain := caseapi.NewInterceptorChain()

	if len(config.Headers) > 0 {
		chain.AddRequestInterceptor(caseapi.HeaderInterceptor(config.Headers))
	}

	chain.AddResponseInterceptor(caseapi.LoggingResponseInterceptor(logger))

	if config.Metrics == nil {
		return chain, nil, nil
	}

	metrics, err := caseapi.NewMetrics(config.Metrics)
	if err != nil {
		return nil, nil, err
	}

	metrics.Install(chain)

	return chain, metrics, nil
}

// New creates a case API client.
func New(ctx context.Context, config *caseapi.Config) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	var logger caseapi.Logger = caseapi.NopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	tokenManager, err := createTokenManager(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	chain, metrics, err := createInterceptors(config, logger)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, createHTTPClientOptions(config, logger, chain)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		base: &resourceBase{
			httpClient:  httpClient,
			logger:      logger,
			metrics:     metrics,
			maxPageSize: config.MaxPageSize,
		},
	}

	client.initializeResourceClients(config.UploadPartSize)

	return client, nil
}

// initializeResourceClients builds every resource and workflow client on the
// shared base.
func (c *Client) initializeResourceClients(uploadPartSize int) {
	c.actions = NewActionsClient(c.base)
	c.actionTypes = NewActionTypesClient(c.base)
	c.actionParticipants = NewActionParticipantsClient(c.base)
	c.participants = NewParticipantsClient(c.base)
	c.participantTypes = NewParticipantTypesClient(c.base)
	c.participantDefaultTypes = NewParticipantDefaultTypesClient(c.base)
	c.tasks = NewTasksClient(c.base)
	c.dataCollections = NewDataCollectionsClient(c.base)
	c.dataCollectionFields = NewDataCollectionFieldsClient(c.base)
	c.dataCollectionRecords = NewDataCollectionRecordsClient(c.base)
	c.dataCollectionRecordValues = NewDataCollectionRecordValuesClient(c.base)
	c.actionDocuments = NewActionDocumentsClient(c.base)
	c.actionFolders = NewActionFoldersClient(c.base)
	c.fileNotes = NewFileNotesClient(c.base)
	c.steps = NewStepsClient(c.base)
	c.stepChangeLogs = NewStepChangeLogsClient(c.base)
	c.users = NewUsersClient(c.base)
	c.files = NewFilesClient(c.base, uploadPartSize)

	c.fieldValues = NewFieldValuesClient(c.base, c.actions, c.dataCollections, c.dataCollectionRecordValues)
	c.cleanup = NewCleanupClient(c.base, c.tasks)
	c.transitions = NewTransitionsClient(c.base, c.actions, c.steps, c.stepChangeLogs)
	c.classifier = NewClassifierClient(c.fieldValues)
}

// Actions implements caseapi.Client.
func (c *Client) Actions() caseapi.ActionsClient { return c.actions }

// ActionTypes implements caseapi.Client.
func (c *Client) ActionTypes() caseapi.ActionTypesClient { return c.actionTypes }

// ActionParticipants implements caseapi.Client.
func (c *Client) ActionParticipants() caseapi.ActionParticipantsClient { return c.actionParticipants }

// Participants implements caseapi.Client.
func (c *Client) Participants() caseapi.ParticipantsClient { return c.participants }

// ParticipantTypes implements caseapi.Client.
func (c *Client) ParticipantTypes() caseapi.ParticipantTypesClient { return c.participantTypes }

// ParticipantDefaultTypes implements caseapi.Client.
func (c *Client) ParticipantDefaultTypes() caseapi.ParticipantDefaultTypesClient {
	return c.participantDefaultTypes
}

// Tasks implements caseapi.Client.
func (c *Client) Tasks() caseapi.TasksClient { return c.tasks }

// DataCollections implements caseapi.Client.
func (c *Client) DataCollections() caseapi.DataCollectionsClient { return c.dataCollections }

// DataCollectionFields implements caseapi.Client.
func (c *Client) DataCollectionFields() caseapi.DataCollectionFieldsClient {
	return c.dataCollectionFields
}

// DataCollectionRecords implements caseapi.Client.
func (c *Client) DataCollectionRecords() caseapi.DataCollectionRecordsClient {
	return c.dataCollectionRecords
}

// DataCollectionRecordValues implements caseapi.Client.
func (c *Client) DataCollectionRecordValues() caseapi.DataCollectionRecordValuesClient {
	return c.dataCollectionRecordValues
}

// ActionDocuments implements caseapi.Client.
func (c *Client) ActionDocuments() caseapi.ActionDocumentsClient { return c.actionDocuments }

// ActionFolders implements caseapi.Client.
func (c *Client) ActionFolders() caseapi.ActionFoldersClient { return c.actionFolders }

// FileNotes implements caseapi.Client.
func (c *Client) FileNotes() caseapi.FileNotesClient { return c.fileNotes }

// Steps implements caseapi.Client.
func (c *Client) Steps() caseapi.StepsClient { return c.steps }

// StepChangeLogs implements caseapi.Client.
func (c *Client) StepChangeLogs() caseapi.StepChangeLogsClient { return c.stepChangeLogs }

// Users implements caseapi.Client.
func (c *Client) Users() caseapi.UsersClient { return c.users }

// Files implements caseapi.Client.
func (c *Client) Files() caseapi.FilesClient { return c.files }

// FieldValues implements caseapi.Client.
func (c *Client) FieldValues() caseapi.FieldValuesClient { return c.fieldValues }

// Cleanup implements caseapi.Client.
func (c *Client) Cleanup() caseapi.CleanupClient { return c.cleanup }

// Transitions implements caseapi.Client.
func (c *Client) Transitions() caseapi.TransitionsClient { return c.transitions }

// Classifier implements caseapi.Client.
func (c *Client) Classifier() caseapi.ClassifierClient { return c.classifier }

// HTTPClient returns the underlying transport.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// TokenManager returns the token manager, or nil for unauthenticated clients.
func (c *Client) TokenManager() auth.TokenManager {
	return c.tokenManager
}

var _ caseapi.Client = (*Client)(nil)
