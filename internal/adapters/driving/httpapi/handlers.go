package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

func bindJSON(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return nil
}

// ==================== Clients ====================

func (s *Server) listClients(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	clients, err := s.svc.Clients.List(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(clients)
}

func (s *Server) createClient(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var in domain.ClientInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	client, err := s.svc.Clients.Create(c.Context(), user.ID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (s *Server) getClient(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	client, err := s.svc.Clients.Get(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(client)
}

func (s *Server) updateClient(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch domain.ClientPatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	client, err := s.svc.Clients.Update(c.Context(), user.ID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(client)
}

func (s *Server) deleteClient(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := s.svc.Clients.Delete(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ==================== Templates ====================

func (s *Server) listTemplates(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	templates, err := s.svc.Templates.List(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(templates)
}

func (s *Server) createTemplate(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var in domain.TemplateInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	tmpl, err := s.svc.Templates.Create(c.Context(), user.ID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

func (s *Server) getTemplate(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tmpl, err := s.svc.Templates.Get(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tmpl)
}

func (s *Server) updateTemplate(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch domain.TemplatePatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	tmpl, err := s.svc.Templates.Update(c.Context(), user.ID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(tmpl)
}

func (s *Server) deleteTemplate(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := s.svc.Templates.Delete(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ==================== Mail ====================

type sendResponse struct {
	Results []domain.SendResult `json:"results"`
}

func (s *Server) sendEmails(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req domain.SendRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	results, err := s.svc.Mail.SendBulk(c.Context(), user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(sendResponse{Results: results})
}

func (s *Server) sendTemplate(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var body struct {
		ClientIDs []string `json:"clientIds"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	results, err := s.svc.Mail.SendTemplate(c.Context(), user.ID, c.Params("id"), body.ClientIDs)
	if err != nil {
		return err
	}
	return c.JSON(sendResponse{Results: results})
}

// ==================== Calendar ====================

// calendarEvents reads the window from timeMin and timeMax when both are
// given, otherwise from period.
func (s *Server) calendarEvents(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	timeMin, timeMax, err := s.window(c.Query("period"), c.Query("timeMin"), c.Query("timeMax"))
	if err != nil {
		return err
	}

	events, err := s.svc.Calendar.ListEvents(c.Context(), user.ID, timeMin, timeMax)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.CalendarEvent{}
	}
	return c.JSON(events)
}

func (s *Server) window(period, rawMin, rawMax string) (time.Time, time.Time, error) {
	if rawMin == "" || rawMax == "" {
		from, to := domain.WindowForPeriod(domain.Period(period), s.now())
		return from, to, nil
	}

	v := domain.NewValidationError()
	timeMin, err := time.Parse(time.RFC3339, rawMin)
	if err != nil {
		v.Add("timeMin", "must be an RFC 3339 timestamp")
	}
	timeMax, err := time.Parse(time.RFC3339, rawMax)
	if err != nil {
		v.Add("timeMax", "must be an RFC 3339 timestamp")
	}
	return timeMin, timeMax, v.OrNil()
}
