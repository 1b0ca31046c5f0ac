package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const entityType = "PROJECT"

// API is the subset of the DynamoDB client the repository uses
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// projectItem is the stored row. The full document travels as JSON so the
// item layout does not follow every change of the canvas model.
type projectItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	EntityType      string `dynamodbav:"EntityType"`
	ProjectID       string `dynamodbav:"ProjectID"`
	Name            string `dynamodbav:"Name"`
	NodeCount       int    `dynamodbav:"NodeCount"`
	ConnectionCount int    `dynamodbav:"ConnectionCount"`
	Version         int    `dynamodbav:"Version"`
	Document        string `dynamodbav:"Document"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
}

// ProjectRepository stores projects in a single DynamoDB table
type ProjectRepository struct {
	client    API
	tableName string
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// Compile-time interface check
var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a DynamoDB backed project repository
func NewProjectRepository(client API, tableName string, cfg *config.DomainConfig, logger *zap.Logger) *ProjectRepository {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ProjectRepository{
		client:    client,
		tableName: tableName,
		cfg:       cfg,
		logger:    logger,
	}
}

func buildKey(projectID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROJECT#%s", projectID)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save writes the project with optimistic locking on Version
func (r *ProjectRepository) Save(ctx context.Context, project *aggregates.Project) error {
	if project == nil {
		return pkgerrors.NewValidationError("project is required")
	}
	expected := project.Version()

	var condition expression.ConditionBuilder
	if expected > 0 {
		condition = expression.Name("Version").Equal(expression.Value(expected))
	} else {
		condition = expression.Name("PK").AttributeNotExists()
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	saved := project.Clone()
	saved.MarkSaved()
	item, err := toItem(saved.Serialize())
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("project %s was modified concurrently (expected version %d)", project.ID(), expected),
			).WithCode(pkgerrors.CodeVersionConflict)
		}
		return pkgerrors.NewDatabaseError("save project", err)
	}

	project.MarkSaved()
	r.logger.Debug("Project saved",
		zap.String("projectID", project.ID().String()),
		zap.Int("version", project.Version()),
	)
	return nil
}

// FindByID loads a project
func (r *ProjectRepository) FindByID(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            buildKey(id.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get project", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("project")
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project item: %w", err)
	}
	var doc aggregates.ProjectDocument
	if err := json.Unmarshal([]byte(item.Document), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode project document: %w", err)
	}
	doc.Version = item.Version
	return aggregates.DeserializeProject(doc, r.cfg)
}

// List scans project rows. Document bodies are not fetched.
func (r *ProjectRepository) List(ctx context.Context, limit int) ([]ports.ProjectSummary, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	projection := expression.NamesList(
		expression.Name("ProjectID"),
		expression.Name("Name"),
		expression.Name("NodeCount"),
		expression.Name("ConnectionCount"),
		expression.Name("Version"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(projection).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	var summaries []ports.ProjectSummary
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list projects", err)
		}

		var items []projectItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project items: %w", err)
		}
		for _, item := range items {
			updated, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
			summaries = append(summaries, ports.ProjectSummary{
				ID:              item.ProjectID,
				Name:            item.Name,
				NodeCount:       item.NodeCount,
				ConnectionCount: item.ConnectionCount,
				Version:         item.Version,
				UpdatedAt:       updated,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Delete removes a project row
func (r *ProjectRepository) Delete(ctx context.Context, id valueobjects.ProjectID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      buildKey(id.String()),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return pkgerrors.NewNotFoundError("project")
		}
		return pkgerrors.NewDatabaseError("delete project", err)
	}

	r.logger.Debug("Project deleted", zap.String("projectID", id.String()))
	return nil
}

func toItem(doc aggregates.ProjectDocument) (map[string]types.AttributeValue, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project document: %w", err)
	}
	item, err := attributevalue.MarshalMap(projectItem{
		PK:              "PROJECT#" + doc.ID,
		SK:              "METADATA",
		EntityType:      entityType,
		ProjectID:       doc.ID,
		Name:            doc.Name,
		NodeCount:       len(doc.Nodes),
		ConnectionCount: len(doc.Connections),
		Version:         doc.Version,
		Document:        string(body),
		UpdatedAt:       doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project item: %w", err)
	}
	return item, nil
}

// isConditionFailure recognises failed condition expressions from both the
// typed SDK error and generic API errors.
func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.ErrorCode(), "ConditionalCheckFailed")
	}
	return false
}
