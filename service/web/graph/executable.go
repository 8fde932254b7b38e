package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kirsrus/labsite/model"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	// Каждые 10 секунд подавать в канал (ping), иначе клиент его закроет
	keepAlivePingInterval = 10 * time.Second
	timeFormat            = time.RFC3339
	defaultLimit          = 50
)

// NewHandler обработчик GraphQL: POST и GET для запросов, WebSocket для подписок
func NewHandler(resolver *Resolver) *handler.Server {
	srv := handler.New(&executableSchema{schema: Schema(), resolver: resolver})
	srv.AddTransport(transport.Websocket{
		KeepAlivePingInterval: keepAlivePingInterval,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	})
	srv.AddTransport(transport.POST{})
	srv.AddTransport(transport.GET{})
	return srv
}

// Исполнитель схемы поверх Resolver
type executableSchema struct {
	schema   *ast.Schema
	resolver *Resolver
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, args map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	rc := graphql.GetOperationContext(ctx)
	switch rc.Operation.Operation {
	case ast.Query:
		return oneShot(e.query(ctx, rc))
	case ast.Subscription:
		return e.subscription(ctx, rc)
	default:
		return oneShot(errorResponse(errors.NotSupportedf("операция %s", rc.Operation.Operation)))
	}
}

func (e *executableSchema) query(ctx context.Context, rc *graphql.OperationContext) *graphql.Response {
	fields := graphql.CollectFields(rc, rc.Operation.SelectionSet, []string{"Query"})
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Query")
		case "temperatures":
			limit, err := intArg(field.ArgumentMap(rc.Variables), "limit", defaultLimit)
			if err != nil {
				return errorResponse(err)
			}
			entries, err := e.resolver.Temperatures(ctx, limit)
			if err != nil {
				e.resolver.log.Warnf("temperatures: %v", err)
				return errorResponse(err)
			}
			list := make(graphql.Array, 0, len(entries))
			for _, entry := range entries {
				list = append(list, marshalEntry(rc, field.Selections, entry))
			}
			out.Values[i] = list
		default:
			out.Values[i] = graphql.Null
		}
	}
	return dataResponse(out)
}

func (e *executableSchema) subscription(ctx context.Context, rc *graphql.OperationContext) graphql.ResponseHandler {
	fields := graphql.CollectFields(rc, rc.Operation.SelectionSet, []string{"Subscription"})
	if len(fields) != 1 || fields[0].Name != "temperatureAccepted" {
		return oneShot(errorResponse(errors.NotValidf("подписка должна содержать одно поле temperatureAccepted")))
	}
	field := fields[0]

	events, err := e.resolver.TemperatureAccepted(ctx)
	if err != nil {
		return oneShot(errorResponse(err))
	}

	return func(ctx context.Context) *graphql.Response {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			out := graphql.NewFieldSet(fields)
			out.Values[0] = marshalEvent(rc, field.Selections, event)
			return dataResponse(out)
		}
	}
}

func marshalEntry(rc *graphql.OperationContext, sel ast.SelectionSet, entry model.JournalEntry) graphql.Marshaler {
	fields := graphql.CollectFields(rc, sel, []string{"Temperature"})
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Temperature")
		case "id":
			out.Values[i] = graphql.MarshalID(strconv.Itoa(int(entry.ID)))
		case "room":
			out.Values[i] = graphql.MarshalString(entry.Room)
		case "temperature":
			out.Values[i] = graphql.MarshalFloat(entry.Temperature)
		case "createdAt":
			out.Values[i] = graphql.MarshalString(entry.CreatedAt.Format(timeFormat))
		default:
			out.Values[i] = graphql.Null
		}
	}
	out.Dispatch()
	return out
}

func marshalEvent(rc *graphql.OperationContext, sel ast.SelectionSet, event model.FeedEvent) graphql.Marshaler {
	fields := graphql.CollectFields(rc, sel, []string{"TemperatureEvent"})
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("TemperatureEvent")
		case "room":
			out.Values[i] = graphql.MarshalString(event.Room)
		case "temperature":
			out.Values[i] = graphql.MarshalFloat(event.Temperature)
		case "message":
			out.Values[i] = graphql.MarshalString(event.Message)
		case "createdAt":
			out.Values[i] = graphql.MarshalString(event.CreatedAt.Format(timeFormat))
		default:
			out.Values[i] = graphql.Null
		}
	}
	out.Dispatch()
	return out
}

// Целочисленный аргумент. Литерал приходит как int64, переменная как json.Number
func intArg(args map[string]interface{}, name string, def int) (int, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return def, nil
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, errors.NotValidf("%s %s", name, v)
		}
		return int(n), nil
	}
	return 0, errors.NotValidf("%s типа %T", name, value)
}

func dataResponse(out *graphql.FieldSet) *graphql.Response {
	out.Dispatch()
	var buf bytes.Buffer
	out.MarshalGQL(&buf)
	return &graphql.Response{Data: buf.Bytes()}
}

func errorResponse(err error) *graphql.Response {
	return &graphql.Response{Errors: gqlerror.List{gqlerror.Errorf("%s", err.Error())}}
}

// Ответ, который отдаётся один раз
func oneShot(resp *graphql.Response) graphql.ResponseHandler {
	sent := false
	return func(context.Context) *graphql.Response {
		if sent {
			return nil
		}
		sent = true
		return resp
	}
}
