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

package model

import (
	"encoding/json"
	"time"
)

// Reply is embedded in its parent comment and never queried on its own.
type Reply struct {
	ReplyID   string    `json:"replyId" bson:"replyId"`
	ReplyBody string    `json:"replyBody" bson:"replyBody"`
	WrittenBy string    `json:"writtenBy" bson:"writtenBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Comment struct {
	CommentID   string    `json:"_id" bson:"_id"`
	PizzaID     string    `json:"pizzaId" bson:"pizzaId"`
	WrittenBy   string    `json:"writtenBy" bson:"writtenBy"`
	CommentBody string    `json:"commentBody" bson:"commentBody"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	Replies     []Reply   `json:"replies" bson:"replies"`
	ReplyCount  int       `json:"replyCount" bson:"-"`
}

func (c *Comment) ApplyDefaults(now time.Time) {
	if c.CommentID == "" {
		c.CommentID = GenerateUUIDWithSuffix("cmt")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.Replies == nil {
		c.Replies = []Reply{}
	}
}

func (r *Reply) ApplyDefaults(now time.Time) {
	if r.ReplyID == "" {
		r.ReplyID = GenerateUUIDWithSuffix("rpl")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// MarshalJSON emits the replyCount virtual.
func (c Comment) MarshalJSON() ([]byte, error) {
	type comment Comment
	out := comment(c)
	if out.Replies == nil {
		out.Replies = []Reply{}
	}
	out.ReplyCount = len(out.Replies)
	return json.Marshal(out)
}
