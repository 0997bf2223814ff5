package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/Satish-vaishyar/Collage-Events/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var _ registration.Repository = &DB{}

type registrationDynamo struct {
	PK string
	SK string

	ID             uuid.UUID
	Version        int
	EventID        uuid.UUID
	Name           string
	Email          string
	RegisteredAt   time.Time
	AmountMinor    *int64
	AmountCurrency *string
	OrderID        string
	Status         registration.PaymentStatus
	SettledAt      *time.Time
}

const (
	registrationEntityName = "REGISTRATION"
)

func registrationPK(eventId uuid.UUID) string {
	return eventPK(eventId)
}

// Registrations are keyed by email within an event, so a second sign up with
// the same address fails the create-once conditional instead of duplicating.
func registrationSK(email string) string {
	return fmt.Sprintf("%s#%s", registrationEntityName, email)
}

func registrationToDynamo(reg registration.Registration) registrationDynamo {
	dyn := registrationDynamo{
		PK:           registrationPK(reg.EventID),
		SK:           registrationSK(reg.Email),
		ID:           reg.ID,
		Version:      reg.Version,
		EventID:      reg.EventID,
		Name:         reg.Name,
		Email:        reg.Email,
		RegisteredAt: reg.RegisteredAt,
		OrderID:      reg.OrderID,
		Status:       reg.Status,
		SettledAt:    reg.SettledAt,
	}

	if reg.Amount != nil {
		amount := reg.Amount.Amount()
		currency := reg.Amount.Currency().Code
		dyn.AmountMinor = &amount
		dyn.AmountCurrency = &currency
	}

	return dyn
}

func dynamoToRegistration(dynReg registrationDynamo) registration.Registration {
	var amount *money.Money
	if dynReg.AmountMinor != nil && dynReg.AmountCurrency != nil {
		amount = money.New(*dynReg.AmountMinor, *dynReg.AmountCurrency)
	}

	return registration.Registration{
		ID:           dynReg.ID,
		Version:      dynReg.Version,
		EventID:      dynReg.EventID,
		Name:         dynReg.Name,
		Email:        dynReg.Email,
		RegisteredAt: dynReg.RegisteredAt,
		Amount:       amount,
		OrderID:      dynReg.OrderID,
		Status:       dynReg.Status,
		SettledAt:    dynReg.SettledAt,
	}
}

func (d *DB) CreateRegistration(ctx context.Context, reg registration.Registration, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	regPut, err := registrationPutItem(d.tableName, reg)
	if err != nil {
		return err
	}

	eventPut, err := eventPutItem(d.tableName, event)
	if err != nil {
		return err
	}

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: regPut},
			{Put: eventPut},
		},
	})
	if err != nil {
		return translateRegistrationWriteErr(err, reg)
	}

	return nil
}

func (d *DB) CreateRegistrationWithOrder(ctx context.Context, reg registration.Registration, order registration.PaymentOrder, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	regPut, err := registrationPutItem(d.tableName, reg)
	if err != nil {
		return err
	}

	orderPut, err := orderPutItem(d.tableName, order)
	if err != nil {
		return err
	}

	eventPut, err := eventPutItem(d.tableName, event)
	if err != nil {
		return err
	}

	// One transaction: no registration without its order and vice versa.
	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: regPut},
			{Put: orderPut},
			{Put: eventPut},
		},
	})
	if err != nil {
		return translateRegistrationWriteErr(err, reg)
	}

	return nil
}

func registrationPutItem(tableName string, reg registration.Registration) (*types.Put, error) {
	dynamoReg := registrationToDynamo(reg)

	regItem, err := attributevalue.MarshalMap(dynamoReg)
	if err != nil {
		return nil, registration.NewFailedToTranslateToDBModelError("Failed to translate registration to dynamo model", err)
	}
	regExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoReg.Version)))

	return &types.Put{
		TableName:                 aws.String(tableName),
		Item:                      regItem,
		ConditionExpression:       regExpr.Condition(),
		ExpressionAttributeNames:  regExpr.Names(),
		ExpressionAttributeValues: regExpr.Values(),
	}, nil
}

func eventPutItem(tableName string, event events.Event) (*types.Put, error) {
	dynamoEvent := newEventDynamo(event)

	eventItem, err := attributevalue.MarshalMap(dynamoEvent)
	if err != nil {
		return nil, registration.NewFailedToTranslateToDBModelError("Failed to translate event to dynamo model", err)
	}
	eventExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(event.Version)))

	return &types.Put{
		TableName:                 aws.String(tableName),
		Item:                      eventItem,
		ConditionExpression:       eventExpr.Condition(),
		ExpressionAttributeNames:  eventExpr.Names(),
		ExpressionAttributeValues: eventExpr.Values(),
	}, nil
}

func translateRegistrationWriteErr(err error, reg registration.Registration) error {
	var transactionFailedErr *types.TransactionCanceledException
	if errors.As(err, &transactionFailedErr) {
		if len(transactionFailedErr.CancellationReasons) > 0 &&
			transactionFailedErr.CancellationReasons[0].Code != nil &&
			*transactionFailedErr.CancellationReasons[0].Code == "ConditionalCheckFailed" {
			return registration.NewRegistrationAlreadyExistsError(fmt.Sprintf("Registration already exists for email %q", reg.Email), err)
		}
		return registration.NewFailedToWriteError("Version conflict error", err)
	} else if errors.Is(err, context.DeadlineExceeded) {
		return registration.NewTimeoutError("Registration write timed out")
	}
	return registration.NewFailedToWriteError("Failed TransactWriteItems call", err)
}

func (d *DB) GetRegistration(ctx context.Context, eventId uuid.UUID, email string) (registration.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: registrationPK(eventId)},
			"SK": &types.AttributeValueMemberS{Value: registrationSK(email)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.Registration{}, registration.NewTimeoutError("GetRegistration timed out")
		}
		return registration.Registration{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch registration for event %q and email %s", eventId, email), err)
	}

	if len(resp.Item) == 0 {
		return registration.Registration{}, registration.NewRegistrationDoesNotExistsError(fmt.Sprintf("Registration for event %q and email %s not found", eventId, email), nil)
	}

	var dynReg registrationDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &dynReg)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal registration from dynamo: %s", err))
	}

	return dynamoToRegistration(dynReg), nil
}

func (d *DB) GetAllRegistrationsForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("PK").Equal(expression.Value(registrationPK(eventId))).
		And(expression.Key("SK").BeginsWith(registrationEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return registration.GetAllRegistrationsResponse{}, registration.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.GetAllRegistrationsResponse{}, registration.NewTimeoutError("GetAllRegistrationsForEvent timed out")
		}
		return registration.GetAllRegistrationsResponse{}, registration.NewFailedToFetchError("Failed to fetch registrations from dynamo", err)
	}

	var dynamoItems []registrationDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo registrations: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := getKeyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return registration.GetAllRegistrationsResponse{
		Data: slices.Map(dynamoItems, func(v registrationDynamo) registration.Registration {
			return dynamoToRegistration(v)
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}

func (d *DB) UpdateRegistrationStatus(ctx context.Context, reg registration.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	dynamoReg := registrationToDynamo(reg)

	item, err := attributevalue.MarshalMap(dynamoReg)
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate registration to dynamo model", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(dynamoReg.Version)))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return registration.NewFailedToWriteError("Version conflict updating registration status", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("UpdateRegistrationStatus timed out")
		}
		return registration.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}
