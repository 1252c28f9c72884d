package caseapi

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Resource keys. Each is both the URL path noun and the envelope field name.
const (
	ResourceActions                    = "actions"
	ResourceActionTypes                = "actiontypes"
	ResourceActionParticipants         = "actionparticipants"
	ResourceParticipants               = "participants"
	ResourceParticipantTypes           = "participanttypes"
	ResourceParticipantDefaultTypes    = "participantdefaulttypes"
	ResourceTasks                      = "tasks"
	ResourceDataCollections            = "datacollections"
	ResourceDataCollectionFields       = "datacollectionfields"
	ResourceDataCollectionRecords      = "datacollectionrecords"
	ResourceDataCollectionRecordValues = "datacollectionrecordvalues"
	ResourceActionDocuments            = "actiondocuments"
	ResourceActionFolders              = "actionfolders"
	ResourceFileNotes                  = "filenotes"
	ResourceSteps                      = "steps"
	ResourceStepChangeLogs             = "stepchangelogs"
	ResourceActionChangeStep           = "actionchangestep"
	ResourceUsers                      = "users"
	ResourceFiles                      = "files"
)

// Static errors for err113 compliance.
var (
	ErrCompositeIDParts = errors.New("unexpected number of composite id parts")
)

// compositeParts validates that an ID is a composite id with n parts.
func compositeParts(n int) validation.Rule {
	return validation.By(func(value interface{}) error {
		id, _ := value.(ID)
		if id == "" {
			return nil
		}

		parsed, err := ParseCompositeID(string(id))
		if err != nil {
			return err
		}

		if parsed.Len() != n {
			return fmt.Errorf("%w: want %d, got %d", ErrCompositeIDParts, n, parsed.Len())
		}

		return nil
	})
}

// Action is a case (matter) record.
type Action struct {
	ID        ID          `json:"id,omitempty"        yaml:"id"`
	Name      string      `json:"name,omitempty"      yaml:"name"`
	Reference string      `json:"reference,omitempty" yaml:"reference,omitempty"`
	Priority  int         `json:"priority,omitempty"  yaml:"priority,omitempty"`
	Status    string      `json:"status,omitempty"    yaml:"status,omitempty"`
	Links     ActionLinks `json:"links"               yaml:"links"`
}

// ActionLinks holds an action's references.
type ActionLinks struct {
	ActionType ID `json:"actionType,omitempty" yaml:"action_type,omitempty"`
	Step       ID `json:"step,omitempty"       yaml:"step,omitempty"`
	AssignedTo ID `json:"assignedTo,omitempty" yaml:"assigned_to,omitempty"`
	Division   ID `json:"division,omitempty"   yaml:"division,omitempty"`
}

// Validate implements validation.Validatable.
func (a Action) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
	)
}

// ActionType is the template a case is created from.
type ActionType struct {
	ID          ID     `json:"id,omitempty"          yaml:"id"`
	Name        string `json:"name,omitempty"        yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate implements validation.Validatable.
func (a ActionType) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
	)
}

// ActionParticipant joins a participant to an action under a participant
// type. Its id is "{action}--{participantType}--{participant}".
type ActionParticipant struct {
	ID                ID                     `json:"id,omitempty"                yaml:"id"`
	ParticipantNumber int                    `json:"participantNumber,omitempty" yaml:"participant_number,omitempty"`
	Links             ActionParticipantLinks `json:"links"                       yaml:"links"`
}

// ActionParticipantLinks holds an action participant's references.
type ActionParticipantLinks struct {
	Action          ID `json:"action,omitempty"          yaml:"action,omitempty"`
	ParticipantType ID `json:"participantType,omitempty" yaml:"participant_type,omitempty"`
	Participant     ID `json:"participant,omitempty"     yaml:"participant,omitempty"`
}

// Validate implements validation.Validatable.
func (a ActionParticipant) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required, compositeParts(3)),
	)
}

// Participant is a person or organisation.
type Participant struct {
	ID           ID     `json:"id,omitempty"           yaml:"id"`
	DisplayName  string `json:"displayName,omitempty"  yaml:"display_name,omitempty"`
	FirstName    string `json:"firstName,omitempty"    yaml:"first_name,omitempty"`
	LastName     string `json:"lastName,omitempty"     yaml:"last_name,omitempty"`
	CompanyName  string `json:"companyName,omitempty"  yaml:"company_name,omitempty"`
	Email        string `json:"email,omitempty"        yaml:"email,omitempty"`
	Phone        string `json:"phone1Number,omitempty" yaml:"phone,omitempty"`
	IsCompany    string `json:"isCompany,omitempty"    yaml:"is_company,omitempty"`
	PhysicalCity string `json:"physicalCity,omitempty" yaml:"physical_city,omitempty"`
}

// Validate implements validation.Validatable.
func (p Participant) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
	)
}

// ParticipantType is a role a participant can play on an action.
type ParticipantType struct {
	ID   ID     `json:"id,omitempty"   yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name"`
}

// Validate implements validation.Validatable.
func (p ParticipantType) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
	)
}

// ParticipantDefaultType is the default participant for an action type and
// participant type. Its id is "{actionType}--{participantType}".
type ParticipantDefaultType struct {
	ID    ID                          `json:"id,omitempty" yaml:"id"`
	Links ParticipantDefaultTypeLinks `json:"links"        yaml:"links"`
}

// ParticipantDefaultTypeLinks holds a participant default type's references.
type ParticipantDefaultTypeLinks struct {
	ActionType      ID `json:"actionType,omitempty"      yaml:"action_type,omitempty"`
	ParticipantType ID `json:"participantType,omitempty" yaml:"participant_type,omitempty"`
	Participant     ID `json:"participant,omitempty"     yaml:"participant,omitempty"`
}

// Validate implements validation.Validatable.
func (p ParticipantDefaultType) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, compositeParts(2)),
	)
}

// Task statuses.
const (
	TaskStatusIncomplete = "Incomplete"
	TaskStatusComplete   = "Complete"
)

// Task is a to-do item on an action.
type Task struct {
	ID                 ID        `json:"id,omitempty"                 yaml:"id"`
	Name               string    `json:"name,omitempty"               yaml:"name"`
	Status             string    `json:"status,omitempty"             yaml:"status,omitempty"`
	Priority           string    `json:"priority,omitempty"           yaml:"priority,omitempty"`
	Description        string    `json:"description,omitempty"        yaml:"description,omitempty"`
	DueTimestamp       string    `json:"dueTimestamp,omitempty"       yaml:"due,omitempty"`
	CompletedTimestamp string    `json:"completedTimestamp,omitempty" yaml:"completed,omitempty"`
	Links              TaskLinks `json:"links"                        yaml:"links"`
}

// TaskLinks holds a task's references.
type TaskLinks struct {
	Action   ID `json:"action,omitempty"   yaml:"action,omitempty"`
	Assignee ID `json:"assignee,omitempty" yaml:"assignee,omitempty"`
}

// Validate implements validation.Validatable.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
	)
}

// DataCollection is a custom field group defined for an action type.
type DataCollection struct {
	ID          ID                  `json:"id,omitempty"          yaml:"id"`
	Name        string              `json:"name,omitempty"        yaml:"name"`
	Label       string              `json:"label,omitempty"       yaml:"label,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Links       DataCollectionLinks `json:"links"                 yaml:"links"`
}

// DataCollectionLinks holds a data collection's references.
type DataCollectionLinks struct {
	ActionType ID `json:"actionType,omitempty" yaml:"action_type,omitempty"`
}

// Validate implements validation.Validatable.
func (d DataCollection) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

// DataCollectionField is a custom field. Its id is "{dataCollection}--{name}".
type DataCollectionField struct {
	ID       ID                       `json:"id,omitempty"       yaml:"id"`
	Name     string                   `json:"name,omitempty"     yaml:"name"`
	Label    string                   `json:"label,omitempty"    yaml:"label,omitempty"`
	DataType string                   `json:"dataType,omitempty" yaml:"data_type,omitempty"`
	Links    DataCollectionFieldLinks `json:"links"              yaml:"links"`
}

// DataCollectionFieldLinks holds a data collection field's references.
type DataCollectionFieldLinks struct {
	DataCollection ID `json:"dataCollection,omitempty" yaml:"data_collection,omitempty"`
}

// Validate implements validation.Validatable.
func (d DataCollectionField) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, compositeParts(2)),
	)
}

// DataCollectionRecord is the per-action container for custom field values.
type DataCollectionRecord struct {
	ID    ID                        `json:"id,omitempty" yaml:"id"`
	Links DataCollectionRecordLinks `json:"links"        yaml:"links"`
}

// DataCollectionRecordLinks holds a data collection record's references.
type DataCollectionRecordLinks struct {
	Action         ID `json:"action,omitempty"         yaml:"action,omitempty"`
	DataCollection ID `json:"dataCollection,omitempty" yaml:"data_collection,omitempty"`
}

// Validate implements validation.Validatable.
func (d DataCollectionRecord) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

// DataCollectionRecordValue is one custom field value. Its id is
// "{dataCollectionRecord}--{fieldName}".
type DataCollectionRecordValue struct {
	ID          ID                             `json:"id,omitempty"          yaml:"id"`
	StringValue string                         `json:"stringValue"           yaml:"value"`
	Links       DataCollectionRecordValueLinks `json:"links"                 yaml:"links"`
}

// DataCollectionRecordValueLinks holds a field value's references.
type DataCollectionRecordValueLinks struct {
	Action               ID `json:"action,omitempty"               yaml:"action,omitempty"`
	DataCollectionField  ID `json:"dataCollectionField,omitempty"  yaml:"data_collection_field,omitempty"`
	DataCollectionRecord ID `json:"dataCollectionRecord,omitempty" yaml:"data_collection_record,omitempty"`
	DataCollection       ID `json:"dataCollection,omitempty"       yaml:"data_collection,omitempty"`
}

// Validate implements validation.Validatable.
func (d DataCollectionRecordValue) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, compositeParts(2)),
	)
}

// ActionDocument is a document attached to an action.
type ActionDocument struct {
	ID    ID                  `json:"id,omitempty"   yaml:"id"`
	Name  string              `json:"name,omitempty" yaml:"name"`
	File  string              `json:"file,omitempty" yaml:"file,omitempty"`
	Links ActionDocumentLinks `json:"links"          yaml:"links"`
}

// ActionDocumentLinks holds a document's references.
type ActionDocumentLinks struct {
	Action ID `json:"action,omitempty" yaml:"action,omitempty"`
	Folder ID `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// Validate implements validation.Validatable.
func (d ActionDocument) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

// ActionFolder is a document folder on an action.
type ActionFolder struct {
	ID    ID                `json:"id,omitempty"   yaml:"id"`
	Name  string            `json:"name,omitempty" yaml:"name"`
	Links ActionFolderLinks `json:"links"          yaml:"links"`
}

// ActionFolderLinks holds a folder's references.
type ActionFolderLinks struct {
	Action       ID `json:"action,omitempty"       yaml:"action,omitempty"`
	ParentFolder ID `json:"parentFolder,omitempty" yaml:"parent_folder,omitempty"`
}

// Validate implements validation.Validatable.
func (f ActionFolder) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
	)
}

// FileNote is a free-text note on an action.
type FileNote struct {
	ID               ID            `json:"id,omitempty"               yaml:"id"`
	Text             string        `json:"text,omitempty"             yaml:"text"`
	Source           string        `json:"source,omitempty"           yaml:"source,omitempty"`
	EnteredTimestamp string        `json:"enteredTimestamp,omitempty" yaml:"entered,omitempty"`
	Links            FileNoteLinks `json:"links"                      yaml:"links"`
}

// FileNoteLinks holds a file note's references.
type FileNoteLinks struct {
	Action    ID `json:"action,omitempty"    yaml:"action,omitempty"`
	EnteredBy ID `json:"enteredBy,omitempty" yaml:"entered_by,omitempty"`
}

// Validate implements validation.Validatable.
func (f FileNote) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
	)
}

// Step is a workflow step of an action type. Its id is
// "{actionType}--{stepNumber}".
type Step struct {
	ID         ID        `json:"id,omitempty"         yaml:"id"`
	StepNumber int       `json:"stepNumber,omitempty" yaml:"step_number"`
	StepName   string    `json:"stepName,omitempty"   yaml:"step_name"`
	IsActive   string    `json:"isActive,omitempty"   yaml:"is_active,omitempty"`
	Links      StepLinks `json:"links"                yaml:"links"`
}

// StepLinks holds a step's references.
type StepLinks struct {
	ActionType ID `json:"actionType,omitempty" yaml:"action_type,omitempty"`
}

// Validate implements validation.Validatable.
func (s Step) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required, compositeParts(2)),
	)
}

// StepChangeLog lists the step nodes an action can move to, each with the
// internal node id a transition must reference.
type StepChangeLog struct {
	ID       ID                 `json:"id,omitempty"       yaml:"id"`
	StepName string             `json:"stepName,omitempty" yaml:"step_name"`
	NodeID   ID                 `json:"nodeId,omitempty"   yaml:"node_id"`
	Links    StepChangeLogLinks `json:"links"              yaml:"links"`
}

// StepChangeLogLinks holds a change-log entry's references.
type StepChangeLogLinks struct {
	Action ID `json:"action,omitempty" yaml:"action,omitempty"`
	Step   ID `json:"step,omitempty"   yaml:"step,omitempty"`
}

// Validate implements validation.Validatable.
func (s StepChangeLog) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.NodeID, validation.Required),
	)
}

// ActionChangeStep is the transition request that moves an action to a node.
type ActionChangeStep struct {
	ID    ID                    `json:"id,omitempty" yaml:"id,omitempty"`
	Links ActionChangeStepLinks `json:"links"        yaml:"links"`
}

// ActionChangeStepLinks holds a transition's references.
type ActionChangeStepLinks struct {
	Action ID `json:"action"         yaml:"action"`
	Node   ID `json:"node"           yaml:"node"`
	Step   ID `json:"step,omitempty" yaml:"step,omitempty"`
}

// Validate implements validation.Validatable.
func (a ActionChangeStep) Validate() error {
	return validation.ValidateStruct(&a.Links,
		validation.Field(&a.Links.Action, validation.Required),
	)
}

// User is a back-office user.
type User struct {
	ID           ID     `json:"id,omitempty"           yaml:"id"`
	FirstName    string `json:"firstName,omitempty"    yaml:"first_name,omitempty"`
	LastName     string `json:"lastName,omitempty"     yaml:"last_name,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty" yaml:"email,omitempty"`
	IsActive     string `json:"isActive,omitempty"     yaml:"is_active,omitempty"`
}

// Validate implements validation.Validatable.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
	)
}

// FileUpload is the server's view of a (possibly multi-part) upload.
type FileUpload struct {
	ID     ID     `json:"id,omitempty"     yaml:"id"`
	Status string `json:"status,omitempty" yaml:"status"`
}

// Validate implements validation.Validatable.
func (f FileUpload) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
	)
}
