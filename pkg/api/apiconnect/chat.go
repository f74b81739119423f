package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// ChatServiceName is the fully-qualified name of the ChatService.
const ChatServiceName = "warrior.v1.ChatService"

// Procedures of the ChatService.
const (
	ChatServiceCreateThreadProcedure   = "/warrior.v1.ChatService/CreateThread"
	ChatServiceListThreadsProcedure    = "/warrior.v1.ChatService/ListThreads"
	ChatServiceGetThreadProcedure      = "/warrior.v1.ChatService/GetThread"
	ChatServiceSaveMessageProcedure    = "/warrior.v1.ChatService/SaveMessage"
	ChatServiceDeleteThreadProcedure   = "/warrior.v1.ChatService/DeleteThread"
	ChatServiceSearchMessagesProcedure = "/warrior.v1.ChatService/SearchMessages"
)

// ChatServiceClient is a client for the ChatService.
type ChatServiceClient interface {
	CreateThread(context.Context, *connect.Request[api.CreateThreadRequest]) (*connect.Response[api.ThreadResponse], error)
	ListThreads(context.Context, *connect.Request[api.ListThreadsRequest]) (*connect.Response[api.ListThreadsResponse], error)
	GetThread(context.Context, *connect.Request[api.GetThreadRequest]) (*connect.Response[api.GetThreadResponse], error)
	SaveMessage(context.Context, *connect.Request[api.SaveMessageRequest]) (*connect.Response[api.SaveMessageResponse], error)
	DeleteThread(context.Context, *connect.Request[api.DeleteThreadRequest]) (*connect.Response[api.DeleteThreadResponse], error)
	SearchMessages(context.Context, *connect.Request[api.SearchMessagesRequest]) (*connect.Response[api.SearchMessagesResponse], error)
}

// NewChatServiceClient constructs a client for the ChatService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewChatServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ChatServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &chatServiceClient{
		createThread: connect.NewClient[api.CreateThreadRequest, api.ThreadResponse](
			httpClient,
			baseURL+ChatServiceCreateThreadProcedure,
			opts...,
		),
		listThreads: connect.NewClient[api.ListThreadsRequest, api.ListThreadsResponse](
			httpClient,
			baseURL+ChatServiceListThreadsProcedure,
			opts...,
		),
		getThread: connect.NewClient[api.GetThreadRequest, api.GetThreadResponse](
			httpClient,
			baseURL+ChatServiceGetThreadProcedure,
			opts...,
		),
		saveMessage: connect.NewClient[api.SaveMessageRequest, api.SaveMessageResponse](
			httpClient,
			baseURL+ChatServiceSaveMessageProcedure,
			opts...,
		),
		deleteThread: connect.NewClient[api.DeleteThreadRequest, api.DeleteThreadResponse](
			httpClient,
			baseURL+ChatServiceDeleteThreadProcedure,
			opts...,
		),
		searchMessages: connect.NewClient[api.SearchMessagesRequest, api.SearchMessagesResponse](
			httpClient,
			baseURL+ChatServiceSearchMessagesProcedure,
			opts...,
		),
	}
}

type chatServiceClient struct {
	createThread   *connect.Client[api.CreateThreadRequest, api.ThreadResponse]
	listThreads    *connect.Client[api.ListThreadsRequest, api.ListThreadsResponse]
	getThread      *connect.Client[api.GetThreadRequest, api.GetThreadResponse]
	saveMessage    *connect.Client[api.SaveMessageRequest, api.SaveMessageResponse]
	deleteThread   *connect.Client[api.DeleteThreadRequest, api.DeleteThreadResponse]
	searchMessages *connect.Client[api.SearchMessagesRequest, api.SearchMessagesResponse]
}

func (c *chatServiceClient) CreateThread(ctx context.Context, req *connect.Request[api.CreateThreadRequest]) (*connect.Response[api.ThreadResponse], error) {
	return c.createThread.CallUnary(ctx, req)
}

func (c *chatServiceClient) ListThreads(ctx context.Context, req *connect.Request[api.ListThreadsRequest]) (*connect.Response[api.ListThreadsResponse], error) {
	return c.listThreads.CallUnary(ctx, req)
}

func (c *chatServiceClient) GetThread(ctx context.Context, req *connect.Request[api.GetThreadRequest]) (*connect.Response[api.GetThreadResponse], error) {
	return c.getThread.CallUnary(ctx, req)
}

func (c *chatServiceClient) SaveMessage(ctx context.Context, req *connect.Request[api.SaveMessageRequest]) (*connect.Response[api.SaveMessageResponse], error) {
	return c.saveMessage.CallUnary(ctx, req)
}

func (c *chatServiceClient) DeleteThread(ctx context.Context, req *connect.Request[api.DeleteThreadRequest]) (*connect.Response[api.DeleteThreadResponse], error) {
	return c.deleteThread.CallUnary(ctx, req)
}

func (c *chatServiceClient) SearchMessages(ctx context.Context, req *connect.Request[api.SearchMessagesRequest]) (*connect.Response[api.SearchMessagesResponse], error) {
	return c.searchMessages.CallUnary(ctx, req)
}

// ChatServiceHandler is an implementation of the ChatService.
type ChatServiceHandler interface {
	CreateThread(context.Context, *connect.Request[api.CreateThreadRequest]) (*connect.Response[api.ThreadResponse], error)
	ListThreads(context.Context, *connect.Request[api.ListThreadsRequest]) (*connect.Response[api.ListThreadsResponse], error)
	GetThread(context.Context, *connect.Request[api.GetThreadRequest]) (*connect.Response[api.GetThreadResponse], error)
	SaveMessage(context.Context, *connect.Request[api.SaveMessageRequest]) (*connect.Response[api.SaveMessageResponse], error)
	DeleteThread(context.Context, *connect.Request[api.DeleteThreadRequest]) (*connect.Response[api.DeleteThreadResponse], error)
	SearchMessages(context.Context, *connect.Request[api.SearchMessagesRequest]) (*connect.Response[api.SearchMessagesResponse], error)
}

// NewChatServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewChatServiceHandler(svc ChatServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	createThreadHandler := connect.NewUnaryHandler(ChatServiceCreateThreadProcedure, svc.CreateThread, opts...)
	listThreadsHandler := connect.NewUnaryHandler(ChatServiceListThreadsProcedure, svc.ListThreads, opts...)
	getThreadHandler := connect.NewUnaryHandler(ChatServiceGetThreadProcedure, svc.GetThread, opts...)
	saveMessageHandler := connect.NewUnaryHandler(ChatServiceSaveMessageProcedure, svc.SaveMessage, opts...)
	deleteThreadHandler := connect.NewUnaryHandler(ChatServiceDeleteThreadProcedure, svc.DeleteThread, opts...)
	searchMessagesHandler := connect.NewUnaryHandler(ChatServiceSearchMessagesProcedure, svc.SearchMessages, opts...)
	return "/warrior.v1.ChatService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ChatServiceCreateThreadProcedure:
			createThreadHandler.ServeHTTP(w, r)
		case ChatServiceListThreadsProcedure:
			listThreadsHandler.ServeHTTP(w, r)
		case ChatServiceGetThreadProcedure:
			getThreadHandler.ServeHTTP(w, r)
		case ChatServiceSaveMessageProcedure:
			saveMessageHandler.ServeHTTP(w, r)
		case ChatServiceDeleteThreadProcedure:
			deleteThreadHandler.ServeHTTP(w, r)
		case ChatServiceSearchMessagesProcedure:
			searchMessagesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
