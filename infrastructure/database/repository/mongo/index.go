package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"presenza.io/infrastructure/logger"
)

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	c, cancel := repo.prepareCtx(ctx)
	defer cancel()

	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.InsertOne(c, parsed)
	if err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return parsed, nil
}

func (repo *MongoRepository[T]) FindOneByFilter(filter map[string]interface{}, opts ...FindOptions) (*T, error) {
	c, cancel := repo.prepareCtx(context.Background())
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, filter, parseFindOneOpts(opts)...).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindMany(filter map[string]interface{}, opts ...FindOptions) (*[]T, error) {
	c, cancel := repo.prepareCtx(context.Background())
	defer cancel()

	cursor, err := repo.Model.Find(c, filter, parseFindOpts(opts)...)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	var results []T
	if err := cursor.All(c, &results); err != nil {
		logger.Error("mongo error occured while decoding FindMany results", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return &results, nil
}

func (repo *MongoRepository[T]) CountDocs(filter map[string]interface{}) (int64, error) {
	c, cancel := repo.prepareCtx(context.Background())
	defer cancel()

	count, err := repo.Model.CountDocuments(c, filter)
	if err != nil {
		logger.Error("mongo error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return 0, err
	}
	return count, nil
}

func (repo *MongoRepository[T]) prepareCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 10*time.Second)
}

func parseFindOneOpts(opts []FindOptions) []*options.FindOneOptions {
	parsed := []*options.FindOneOptions{}
	for _, opt := range opts {
		findOneOpt := options.FindOne()
		if opt.Projection != nil {
			findOneOpt.SetProjection(*opt.Projection)
		}
		if opt.Sort != nil {
			findOneOpt.SetSort(*opt.Sort)
		}
		if opt.Skip != nil {
			findOneOpt.SetSkip(*opt.Skip)
		}
		parsed = append(parsed, findOneOpt)
	}
	return parsed
}

func parseFindOpts(opts []FindOptions) []*options.FindOptions {
	parsed := []*options.FindOptions{}
	for _, opt := range opts {
		findOpt := options.Find()
		if opt.Projection != nil {
			findOpt.SetProjection(*opt.Projection)
		}
		if opt.Sort != nil {
			findOpt.SetSort(*opt.Sort)
		}
		if opt.Skip != nil {
			findOpt.SetSkip(*opt.Skip)
		}
		if opt.Limit != nil {
			findOpt.SetLimit(*opt.Limit)
		}
		parsed = append(parsed, findOpt)
	}
	return parsed
}
