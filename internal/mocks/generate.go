// Package mocks provides gomock implementations of the ports used by the
// users view.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	fetcher := mocks.NewMockFetcher(ctrl)
//	fetcher.EXPECT().FetchUsers(gomock.Any(), gomock.Any()).Return(resp, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=fetcher_mock.go github.com/Sternrassler/users-pagination/pkg/viewmodel Fetcher
