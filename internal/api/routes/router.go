package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/survey-platform/internal/api/handlers"
	"github.com/linskybing/survey-platform/internal/api/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the public and JWT-protected endpoints.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, jwtSecret []byte) {
	handlers.UseJSONFieldNames()

	r.GET("/healthz", h.Health.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(jwtSecret))
	{
		forms := auth.Group("/forms")
		{
			forms.POST("", h.Form.CreateForm)
			forms.GET("", h.Form.ListForms)
			forms.GET("/:id", h.Form.GetForm)
			forms.PUT("/:id", h.Form.UpdateForm)
			forms.DELETE("/:id", h.Form.DeleteForm)
			forms.GET("/:id/access", h.Form.GetAccess)

			forms.GET("/:id/fields", h.Form.ListFields)
			forms.POST("/:id/fields", h.Form.AddField)
			forms.PUT("/:id/fields/order", h.Form.ReorderFields)
			forms.DELETE("/:id/fields/:field_id", h.Form.DeleteField)

			forms.POST("/:id/assignments", h.Form.CreateAssignment)
			forms.GET("/:id/assignments", h.Form.ListAssignments)
			forms.DELETE("/:id/assignments/:assignment_id", h.Form.DeleteAssignment)

			forms.POST("/:id/attachments", h.Form.UploadAttachment)
			forms.POST("/:id/submissions", h.Submission.Submit)
		}

		submissions := auth.Group("/submissions")
		{
			submissions.GET("", h.Submission.ListSubmissions)
			submissions.POST("/bulk-transition", h.Submission.BulkTransition)
			submissions.GET("/:id", h.Submission.GetSubmission)
			submissions.PUT("/:id", h.Submission.UpdateSubmission)
			submissions.DELETE("/:id", h.Submission.DeleteSubmission)
			submissions.POST("/:id/finalize", h.Submission.Finalize)
			submissions.POST("/:id/transition", h.Submission.Transition)
			submissions.POST("/:id/reopen", h.Submission.Reopen)
			submissions.GET("/:id/history", h.Submission.History)
		}
	}
}
