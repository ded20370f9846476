package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ankitpasayat/confident-trivia/game/engine"
	"github.com/ankitpasayat/confident-trivia/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Confident Trivia",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Confident Trivia - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Answer trivia questions and wager confidence tokens (1-10) on each answer.
A correct answer scores the token's value; each token can only be spent once
per game, so save the big ones for questions you are sure about.

AVAILABLE TOOLS:
- create_game: Create a game and become its host
- join_game: Join an existing game by its 4-character code
- start_game: Start the game (host, needs at least 2 players)
- submit_vote: Answer the current question with a confidence token
- change_phase: Drive the round flow (voting -> reveal -> question)
- get_game: Get the full game state
- list_games: List all live games
- game_instructions: Get comprehensive game rules

NOTE: Keep the playerId returned from create_game/join_game - every vote needs it.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new trivia game and register as its host",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"host_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the host player",
				},
			},
			Required: []string{"host_name"},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join an existing game using its 4-character join code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "4-character join code (case-insensitive)",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the joining player",
				},
			},
			Required: []string{"code", "player_name"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a game from the lobby (requires at least 2 players)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_vote",
		Description: "Answer the current question with a confidence token (1-10). For multiple-choice and more-or-less questions the answer is the option index; for true-false it is true or false; for numerical it is your guess.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from create_game or join_game",
				},
				"answer": map[string]interface{}{
					"description": "Answer value: option index, boolean, or numerical guess",
				},
				"token": map[string]interface{}{
					"type":        "integer",
					"description": "Confidence token to wager (1-10, each usable once per game)",
				},
			},
			Required: []string{"game_id", "player_id", "answer", "token"},
		},
	}, c.handleSubmitVote)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "change_phase",
		Description: "Move the game to another phase: voting opens the round, reveal settles it early, question advances to the next round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"phase": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"voting", "reveal", "question", "results"},
					"description": "Target phase",
				},
			},
			Required: []string{"game_id", "phase"},
		},
	}, c.handleChangePhase)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the full state of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all live games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	hostName, _ := args["host_name"].(string)

	var result service.CreateResult
	err := c.apiCall("POST", "/api/games", map[string]string{"hostName": hostName}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Created game %s\nJoin code: %s\nYour player ID: %s\n\nShare the code so others can join, then call start_game.",
		result.Game.ID, result.Game.Code, result.PlayerID)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)
	playerName, _ := args["player_name"].(string)

	var result service.JoinResult
	err := c.apiCall("POST", "/api/games/join", map[string]string{"code": code, "playerName": playerName}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Joined game %s\nYour player ID: %s\n\n%s",
		result.Game.ID, result.PlayerID, formatGame(result.Game))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	var game engine.GameSession
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/start", gameID), nil, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game started!\n\n" + formatGame(&game)), nil
}

func (c *Client) handleSubmitVote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)
	token, _ := args["token"].(float64)

	body := map[string]interface{}{
		"playerId": playerID,
		"answer":   args["answer"],
		"token":    int(token),
	}

	var result service.VoteResult
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/vote", gameID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Vote recorded (token %d).\n", int(token))
	if result.RoundSettled {
		text += "All votes are in - round settled.\n"
	}
	text += "\n" + formatGame(result.Game)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleChangePhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	phase, _ := args["phase"].(string)

	var game engine.GameSession
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/phase", gameID), map[string]string{"phase": phase}, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&game)), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	var game engine.GameSession
	err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", gameID), nil, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&game)), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}

	err := c.apiCall("GET", "/api/games", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		result += fmt.Sprintf("- %s (Code: %s, Phase: %s, Players: %d, Round: %d/%d)\n",
			g.ID, g.Code, g.Phase, g.PlayerCount, g.CurrentRound, g.TotalRounds)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Confident Trivia - Complete Instructions

GAME OBJECTIVE:
Score the most points over 10 rounds of trivia by wagering confidence tokens
on your answers.

CONFIDENCE TOKENS:
- Every player starts with tokens numbered 1 through 10
- Each vote wagers exactly one token
- A correct answer scores the token's value; a wrong answer scores nothing
- Spent tokens are gone either way - a used token never returns
- Strategy: wager high tokens on questions you are certain about and burn
  low tokens on guesses

ROUND FLOW:
1. question - the new question is shown
2. voting - players submit answers with tokens (change_phase to "voting")
3. reveal - automatic once every player has voted, or forced early with
   change_phase to "reveal"
4. change_phase to "question" starts the next round, or ends the game in
   the results phase after the final round

QUESTION TYPES:
- multiple-choice: answer is the option index (0-3)
- true-false: answer is true or false
- more-or-less: answer is 0 (first option) or 1 (second option)
- numerical: answer is a number; close enough within the acceptable range
  counts as correct

LOBBY:
- Games hold 2 to 6 players
- The creator is the host; anyone with the 4-character code can join while
  the game is in the lobby
- Votes can be changed freely until the round settles; only the last vote
  counts, and it must use a token you still hold

SESSION MANAGEMENT:
- Multiple games can run simultaneously
- Games idle for an hour are cleaned up automatically
- Use list_games to find live games and get_game to inspect one`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatGame(game *engine.GameSession) string {
	if game == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game %s | Code: %s | Phase: %s | Round: %d/%d\n",
		game.ID, game.Code, game.CurrentPhase, game.CurrentRound, game.TotalRounds)

	b.WriteString("\nPlayers:\n")
	for _, p := range game.Players {
		marker := " "
		if p.ID == game.HostID {
			marker = "*"
		}
		conn := ""
		if !p.IsConnected {
			conn = " (offline)"
		}
		fmt.Fprintf(&b, "%s %s - %d pts, tokens left: %s%s\n",
			marker, p.Name, p.Score, formatTokens(p.AvailableTokens), conn)
	}

	if game.CurrentQuestion != nil {
		b.WriteString("\n" + formatQuestion(game.CurrentQuestion, game.CurrentPhase))
	}

	if game.CurrentPhase == engine.PhaseVoting {
		fmt.Fprintf(&b, "\nVotes in: %d/%d\n", len(game.Votes), len(game.Players))
	}

	if game.CurrentPhase == engine.PhaseResults {
		b.WriteString("\nFinal standings:\n")
		for _, p := range sortedByScore(game.Players) {
			fmt.Fprintf(&b, "  %s - %d pts\n", p.Name, p.Score)
		}
	}

	return b.String()
}

func formatQuestion(q *engine.Question, phase engine.Phase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question [%s, %s]: %s\n", q.Type, q.Difficulty, q.Text)

	switch q.Type {
	case engine.MultipleChoice:
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "  %d. %s\n", i, opt)
		}
	case engine.TrueFalse:
		b.WriteString("  true / false\n")
	case engine.MoreOrLess:
		fmt.Fprintf(&b, "  0. %s\n  1. %s\n", q.Option1, q.Option2)
	case engine.Numerical:
		if q.Unit != "" {
			fmt.Fprintf(&b, "  (answer in %s)\n", q.Unit)
		}
	}

	// The answer only shows once the round is settled.
	if phase == engine.PhaseReveal || phase == engine.PhaseResults {
		fmt.Fprintf(&b, "Correct answer: %s\n", formatAnswer(q))
		if q.Explanation != "" {
			fmt.Fprintf(&b, "Explanation: %s\n", q.Explanation)
		}
	}
	return b.String()
}

func formatAnswer(q *engine.Question) string {
	a := q.CorrectAnswer
	switch q.Type {
	case engine.MultipleChoice:
		idx := int(a.Number)
		if idx >= 0 && idx < len(q.Options) {
			return fmt.Sprintf("%d (%s)", idx, q.Options[idx])
		}
	case engine.MoreOrLess:
		opts := []string{q.Option1, q.Option2}
		idx := int(a.Number)
		if idx >= 0 && idx < len(opts) {
			return fmt.Sprintf("%d (%s)", idx, opts[idx])
		}
	case engine.TrueFalse:
		if a.Kind == engine.AnswerBool {
			return fmt.Sprintf("%t", a.Bool)
		}
		return fmt.Sprintf("%t", a.Number != 0)
	case engine.Numerical:
		if q.Unit != "" {
			return fmt.Sprintf("%g %s", a.Number, q.Unit)
		}
		return fmt.Sprintf("%g", a.Number)
	}
	return fmt.Sprintf("%g", a.Number)
}

func formatTokens(tokens []int) string {
	if len(tokens) == 0 {
		return "none"
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return strings.Join(parts, ",")
}

func sortedByScore(players []*engine.Player) []*engine.Player {
	sorted := append([]*engine.Player(nil), players...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
