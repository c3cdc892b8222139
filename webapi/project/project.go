// Package project exposes the project estimation endpoints.
package project

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kreso2/costwise/pkg/service/advisor"
	"github.com/kreso2/costwise/pkg/service/estimation"
	"github.com/kreso2/costwise/webapi/common"
)

// Routes registers HTTP routes for project operations.
func Routes(app *fiber.App, estimationSvc *estimation.Service, advisorSvc *advisor.Service) {
	group := app.Group("/api/projects")

	group.Post("/", CreateProject(estimationSvc))
	group.Get("/", ListProjects(estimationSvc))
	group.Get("/:id", GetProject(estimationSvc))
	group.Delete("/:id", DeleteProject(estimationSvc))

	group.Get("/:id/calculations", GetCalculations(estimationSvc))
	group.Get("/:id/suggestions", GetSuggestions(estimationSvc, advisorSvc))

	group.Post("/:id/roles", AddRole(estimationSvc))
	group.Put("/:id/roles/:roleId", UpdateRole(estimationSvc))
	group.Delete("/:id/roles/:roleId", RemoveRole(estimationSvc))
}

// CreateProject handles POST /api/projects.
func CreateProject(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := common.BindAndValidate[CreateProjectRequest](c)
		if err != nil {
			return nil
		}
		p, err := svc.CreateProject(c.Context(), req.toInput())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Project created", p)
	}
}

// ListProjects handles GET /api/projects.
func ListProjects(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projects, err := svc.ListProjects(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list projects", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Projects fetched", projects)
	}
}

// GetProject handles GET /api/projects/:id.
func GetProject(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.GetProject(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project fetched", p)
	}
}

// DeleteProject handles DELETE /api/projects/:id.
func DeleteProject(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteProject(c.Context(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project deleted", nil)
	}
}

// GetCalculations handles GET /api/projects/:id/calculations. It returns
// the computed aggregates without the rest of the project document.
func GetCalculations(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.GetProject(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Calculations fetched", fiber.Map{
			"calculations":  p.Calculations,
			"ratesDegraded": p.RatesDegraded,
		})
	}
}

// GetSuggestions handles GET /api/projects/:id/suggestions.
func GetSuggestions(svc *estimation.Service, advisorSvc *advisor.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.GetProject(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch project", err)
		}
		suggestions := advisorSvc.Analyze(p.Roles, p.Settings, p.Rates)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Suggestions fetched", suggestions)
	}
}

// AddRole handles POST /api/projects/:id/roles.
func AddRole(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		req, err := common.BindAndValidate[RoleRequest](c)
		if err != nil {
			return nil
		}
		p, err := svc.AddRole(c.Context(), id, req.toInput())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to add role", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Role added", p)
	}
}

// UpdateRole handles PUT /api/projects/:id/roles/:roleId.
func UpdateRole(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		roleID, ok := parseID(c, "roleId")
		if !ok {
			return nil
		}
		req, err := common.BindAndValidate[RoleRequest](c)
		if err != nil {
			return nil
		}
		p, err := svc.UpdateRole(c.Context(), id, roleID, req.toInput())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update role", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Role updated", p)
	}
}

// RemoveRole handles DELETE /api/projects/:id/roles/:roleId.
func RemoveRole(svc *estimation.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		roleID, ok := parseID(c, "roleId")
		if !ok {
			return nil
		}
		p, err := svc.RemoveRole(c.Context(), id, roleID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to remove role", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Role removed", p)
	}
}

// parseID parses a uuid path parameter. On failure it writes the error
// response and reports false.
func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}
