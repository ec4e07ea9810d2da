/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pizzahunt/pizzahunt/internal/apierror"
	"github.com/pizzahunt/pizzahunt/model"
)

const (
	pizzaCollection   = "pizzas"
	commentCollection = "comments"
)

// MongoDatasource keeps pizzas and comments in two collections. A pizza stores the
// ids of its comments in "comments" and is populated on read.
type MongoDatasource struct {
	client   *mongo.Client
	database string
}

func NewMongoDataSource(ctx context.Context, dns, database string) (*MongoDatasource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dns))
	if err != nil {
		return nil, err
	}

	err = pingWithRetry(ctx, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		logrus.Errorf("mongodb connection error ❌: %v", err)
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logrus.Info("mongodb connected ✅")

	return &MongoDatasource{client: client, database: database}, nil
}

func (m *MongoDatasource) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

func (m *MongoDatasource) CreatePizzas(ctx context.Context, pizzas []model.Pizza) ([]model.Pizza, error) {
	now := time.Now()
	docs := make([]interface{}, 0, len(pizzas))
	created := make([]model.Pizza, 0, len(pizzas))
	for _, p := range pizzas {
		p.ApplyDefaults(now)
		p.CommentIDs = []string{}
		p.Populate([]model.Comment{})
		docs = append(docs, p)
		created = append(created, p)
	}

	if _, err := m.collection(pizzaCollection).InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Pizza with this ID already exists", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save pizza", err)
	}
	return created, nil
}

func (m *MongoDatasource) GetAllPizzas(ctx context.Context) ([]model.Pizza, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.collection(pizzaCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pizzas", err)
	}

	pizzas := []model.Pizza{}
	if err := cursor.All(ctx, &pizzas); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to decode pizzas", err)
	}

	if err := m.populate(ctx, pizzas); err != nil {
		return nil, err
	}
	return pizzas, nil
}

func (m *MongoDatasource) GetPizzaByID(ctx context.Context, id string) (*model.Pizza, error) {
	var p model.Pizza
	err := m.collection(pizzaCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return nil, mapMongoError(err, pizzaNotFound)
	}
	return m.populated(ctx, p)
}

func (m *MongoDatasource) UpdatePizza(ctx context.Context, id string, update model.PizzaUpdate) (*model.Pizza, error) {
	set := bson.M{}
	if update.PizzaName != nil {
		set["pizzaName"] = *update.PizzaName
	}
	if update.CreatedBy != nil {
		set["createdBy"] = *update.CreatedBy
	}
	if update.Size != nil {
		set["size"] = *update.Size
	}
	if update.Toppings != nil {
		set["toppings"] = *update.Toppings
	}
	if len(set) == 0 {
		return m.GetPizzaByID(ctx, id)
	}

	var p model.Pizza
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.collection(pizzaCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, mapMongoError(err, pizzaNotFound)
	}
	return m.populated(ctx, p)
}

// DeletePizza removes the pizza and then its comments.
func (m *MongoDatasource) DeletePizza(ctx context.Context, id string) (*model.Pizza, error) {
	var p model.Pizza
	err := m.collection(pizzaCollection).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return nil, mapMongoError(err, pizzaNotFound)
	}

	deleted, err := m.populated(ctx, p)
	if err != nil {
		return nil, err
	}

	if _, err := m.collection(commentCollection).DeleteMany(ctx, bson.M{"pizzaId": id}); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete pizza comments", err)
	}
	return deleted, nil
}

func (m *MongoDatasource) AddComment(ctx context.Context, pizzaID string, comment model.Comment) (*model.Pizza, error) {
	comment.PizzaID = pizzaID
	comment.ApplyDefaults(time.Now())

	count, err := m.collection(pizzaCollection).CountDocuments(ctx, bson.M{"_id": pizzaID})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pizza", err)
	}
	if count == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, pizzaNotFound, nil)
	}

	if _, err := m.collection(commentCollection).InsertOne(ctx, comment); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save comment", err)
	}

	var p model.Pizza
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = m.collection(pizzaCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": pizzaID},
		bson.M{"$push": bson.M{"comments": comment.CommentID}},
		opts,
	).Decode(&p)
	if err != nil {
		return nil, mapMongoError(err, pizzaNotFound)
	}
	return m.populated(ctx, p)
}

func (m *MongoDatasource) RemoveComment(ctx context.Context, pizzaID, commentID string) (*model.Pizza, error) {
	res, err := m.collection(commentCollection).DeleteOne(ctx, bson.M{"_id": commentID, "pizzaId": pizzaID})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete comment", err)
	}
	if res.DeletedCount == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, commentNotFound, nil)
	}

	var p model.Pizza
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = m.collection(pizzaCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": pizzaID},
		bson.M{"$pull": bson.M{"comments": commentID}},
		opts,
	).Decode(&p)
	if err != nil {
		return nil, mapMongoError(err, pizzaNotFound)
	}
	return m.populated(ctx, p)
}

func (m *MongoDatasource) AddReply(ctx context.Context, pizzaID, commentID string, reply model.Reply) (*model.Comment, error) {
	reply.ApplyDefaults(time.Now())
	return m.updateComment(ctx, pizzaID, commentID, bson.M{"$push": bson.M{"replies": reply}})
}

func (m *MongoDatasource) RemoveReply(ctx context.Context, pizzaID, commentID, replyID string) (*model.Comment, error) {
	return m.updateComment(ctx, pizzaID, commentID, bson.M{"$pull": bson.M{"replies": bson.M{"replyId": replyID}}})
}

func (m *MongoDatasource) updateComment(ctx context.Context, pizzaID, commentID string, update bson.M) (*model.Comment, error) {
	var c model.Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.collection(commentCollection).FindOneAndUpdate(ctx, bson.M{"_id": commentID, "pizzaId": pizzaID}, update, opts).Decode(&c)
	if err != nil {
		return nil, mapMongoError(err, commentNotFound)
	}
	if c.Replies == nil {
		c.Replies = []model.Reply{}
	}
	c.ReplyCount = len(c.Replies)
	return &c, nil
}

func (m *MongoDatasource) populated(ctx context.Context, p model.Pizza) (*model.Pizza, error) {
	pizzas := []model.Pizza{p}
	if err := m.populate(ctx, pizzas); err != nil {
		return nil, err
	}
	return &pizzas[0], nil
}

// populate replaces comment ids with the comment documents, keeping the order the
// ids were pushed in.
func (m *MongoDatasource) populate(ctx context.Context, pizzas []model.Pizza) error {
	ids := []string{}
	for _, p := range pizzas {
		ids = append(ids, p.CommentIDs...)
	}

	byID := map[string]model.Comment{}
	if len(ids) > 0 {
		cursor, err := m.collection(commentCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve comments", err)
		}
		var comments []model.Comment
		if err := cursor.All(ctx, &comments); err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to decode comments", err)
		}
		for _, c := range comments {
			if c.Replies == nil {
				c.Replies = []model.Reply{}
			}
			c.ReplyCount = len(c.Replies)
			byID[c.CommentID] = c
		}
	}

	for i := range pizzas {
		comments := make([]model.Comment, 0, len(pizzas[i].CommentIDs))
		for _, id := range pizzas[i].CommentIDs {
			if c, ok := byID[id]; ok {
				comments = append(comments, c)
			}
		}
		pizzas[i].Populate(comments)
	}
	return nil
}

func (m *MongoDatasource) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoDatasource) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mapMongoError(err error, notFound string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apierror.NewAPIError(apierror.ErrNotFound, notFound, nil)
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
}
