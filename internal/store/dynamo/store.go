// Package dynamo reads short links from a DynamoDB table keyed by short_id.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/redirect"
)

const (
	DefaultTable  = "url-shortener"
	DefaultRegion = "us-east-1"

	keyAttribute = "short_id"
)

// Client is the subset of *dynamodb.Client the store needs.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// ClientConfig describes how to reach DynamoDB.
type ClientConfig struct {
	Region string
	// EndpointURL overrides the service endpoint, e.g. LocalStack or
	// dynamodb-local. Empty uses the AWS endpoint for Region.
	EndpointURL string
	// Static credentials are used only when both are set; otherwise the
	// default credential chain applies.
	AccessKeyID     string
	SecretAccessKey string
}

// NewClient builds a DynamoDB client. Build it once per process and share it.
func NewClient(ctx context.Context, cfg ClientConfig) (*dynamodb.Client, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	}), nil
}

type Store struct {
	client         Client
	table          string
	consistentRead bool
}

// Config holds configuration for the store.
type Config struct {
	Table          string // defaults to DefaultTable
	ConsistentRead bool
}

func New(client Client, cfg Config) *Store {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	return &Store{
		client:         client,
		table:          table,
		consistentRead: cfg.ConsistentRead,
	}
}

// item is the table layout: short_id (S, hash key), destinations (M of S).
type item struct {
	ShortID      string            `dynamodbav:"short_id"`
	Destinations map[string]string `dynamodbav:"destinations"`
}

func (s *Store) Get(ctx context.Context, shortID string) (redirect.Record, bool, error) {
	const op = "dynamo.Get"

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: shortID},
		},
		ConsistentRead: aws.Bool(s.consistentRead),
	})
	if err != nil {
		return redirect.Record{}, false, errx.FromContext(op, errx.Unavailable, err)
	}
	if len(out.Item) == 0 {
		return redirect.Record{}, false, nil
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return redirect.Record{}, false, errx.E(op, errx.Integrity, fmt.Errorf("decode item %q: %w", shortID, err))
	}
	if it.ShortID == "" {
		it.ShortID = shortID
	}

	return redirect.Record{ShortID: it.ShortID, Destinations: it.Destinations}, true, nil
}
