package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/landlord/landlord-server/internal/game"
	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/cards"
	"go.uber.org/zap"
)

// LobbyAPI serves the HTTP lobby: game listing, creation, seating and a
// plain request/response action endpoint.
type LobbyAPI struct {
	manager *game.Manager
	auth    *TokenIssuer
	logger  *zap.Logger
}

type createGameBody struct {
	Name string `json:"name"`
	Seed int64  `json:"seed"`
}

type seatBody struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// NewHTTPApp builds the fiber application for the lobby API.
func NewHTTPApp(manager *game.Manager, auth *TokenIssuer, allowedOrigins []string, logger *zap.Logger) *fiber.App {
	api := &LobbyAPI{manager: manager, auth: auth, logger: logger}

	app := fiber.New(fiber.Config{
		AppName:               "landlord-server",
		DisableStartupMessage: true,
		ErrorHandler:          api.errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/board", api.boardLayout)
	app.Get("/cards", api.cardCatalog)

	app.Get("/games", api.listGames)
	app.Post("/games", api.createGame)

	route := app.Group("/games")
	route.Get("/:id", api.getGame)
	route.Delete("/:id", api.deleteGame)
	route.Get("/:id/snapshot", api.getSnapshot)
	route.Post("/:id/players", api.joinGame)
	route.Post("/:id/start", api.startGame)
	route.Post("/:id/actions", api.submitAction)
	return app
}

func (a *LobbyAPI) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, game.ErrGameNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		code = fiber.StatusUnauthorized
	}
	if code >= fiber.StatusInternalServerError && a.logger != nil {
		a.logger.Error("http request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (a *LobbyAPI) boardLayout(c *fiber.Ctx) error {
	return c.JSON(board.StandardLayout())
}

func (a *LobbyAPI) cardCatalog(c *fiber.Ctx) error {
	catalog := cards.DefaultCatalog()
	out := make(map[board.Deck][]cards.Card)
	for _, deck := range []board.Deck{board.DeckChance, board.DeckCommunityChest} {
		for _, id := range catalog.IDs(deck) {
			card, _ := catalog.Card(id)
			out[deck] = append(out[deck], card)
		}
	}
	return c.JSON(out)
}

func (a *LobbyAPI) listGames(c *fiber.Ctx) error {
	return c.JSON(a.manager.List())
}

func (a *LobbyAPI) createGame(c *fiber.Ctx) error {
	var body createGameBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	view, err := a.manager.CreateGame(c.UserContext(), body.Name, body.Seed)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (a *LobbyAPI) getGame(c *fiber.Ctx) error {
	view, err := a.manager.View(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (a *LobbyAPI) deleteGame(c *fiber.Ctx) error {
	if err := a.manager.DeleteGame(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *LobbyAPI) getSnapshot(c *fiber.Ctx) error {
	snap, err := a.manager.Snapshot(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	data, err := game.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (a *LobbyAPI) joinGame(c *fiber.Ctx) error {
	var body seatBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	return a.execute(c, game.Action{Type: game.ActionJoin, PlayerID: body.PlayerID, Name: body.Name})
}

func (a *LobbyAPI) startGame(c *fiber.Ctx) error {
	var body seatBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
	}
	return a.execute(c, game.Action{Type: game.ActionStart, PlayerID: body.PlayerID})
}

func (a *LobbyAPI) submitAction(c *fiber.Ctx) error {
	var action game.Action
	if err := c.BodyParser(&action); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if action.Type == "" {
		return fiber.NewError(fiber.StatusBadRequest, "type is required")
	}
	return a.execute(c, action)
}

// execute authenticates, applies and answers one action. Rule violations
// are 200 responses with success=false.
func (a *LobbyAPI) execute(c *fiber.Ctx, action game.Action) error {
	gameID := c.Params("id")
	playerID, err := resolveActor(a.auth, bearerToken(c.Get(fiber.HeaderAuthorization)), gameID, action)
	if err != nil {
		return err
	}
	action.PlayerID = playerID

	res, view, err := a.manager.Execute(c.UserContext(), gameID, action)
	if err != nil {
		return err
	}
	out := actionResponse{Result: res, View: view}
	if action.Type == game.ActionJoin && res.Success {
		if out.Token, err = a.auth.Issue(gameID, playerID); err != nil {
			return err
		}
	}
	return c.JSON(out)
}
