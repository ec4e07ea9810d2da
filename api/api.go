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

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pizzahunt/pizzahunt"
	"github.com/pizzahunt/pizzahunt/api/middleware"
	"github.com/pizzahunt/pizzahunt/config"
	"github.com/pizzahunt/pizzahunt/internal/apierror"
)

type Api struct {
	pizzaHunt *pizzahunt.PizzaHunt
	router    *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	pizzas := router.Group("/api/pizzas")
	pizzas.GET("", a.GetAllPizzas)
	pizzas.POST("", a.CreatePizzas)
	pizzas.GET("/:id", a.GetPizza)
	pizzas.PUT("/:id", a.UpdatePizza)
	pizzas.DELETE("/:id", a.DeletePizza)

	comments := router.Group("/api/comments")
	comments.POST("/:pizzaId", a.AddComment)
	comments.PUT("/:pizzaId/:commentId", a.AddReply)
	comments.DELETE("/:pizzaId/:commentId", a.RemoveComment)
	comments.DELETE("/:pizzaId/:commentId/:replyId", a.RemoveReply)

	return a.router
}

func NewAPI(p *pizzahunt.PizzaHunt) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	return &Api{pizzaHunt: p, router: r}
}

// respondError writes err as an APIError body. Errors that are not APIErrors are
// reported as internal errors with the cause in details.
func respondError(c *gin.Context, err error) {
	var apiErr apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.NewAPIError(apierror.ErrInternalServer, "Something went wrong", err)
	}
	c.JSON(apierror.MapErrorToHTTPStatus(apiErr), apiErr)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, apierror.APIError{
		Code:    apierror.ErrBadRequest,
		Message: err.Error(),
	})
}

func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, apierror.APIError{
		Code:    apierror.ErrInvalidInput,
		Message: err.Error(),
	})
}
