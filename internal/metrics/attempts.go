// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttemptsInitiated tracks method driver calls started, labeled
	// by method ("none", "password", "publickey", "keyboard-interactive",
	// "agent").
	AuthAttemptsInitiated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_initiated_total",
			Help:      "Total number of authentication method attempts initiated",
		},
		[]string{"method"},
	)

	// AuthAttemptsCompleted tracks method driver calls that reached a
	// terminal authstate.Result, labeled by method and result.
	AuthAttemptsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_completed_total",
			Help:      "Total number of authentication method attempts reaching a terminal result",
		},
		[]string{"method", "result"}, // success, denied, partial, info, error
	)

	// AuthFailuresByReason tracks SSH_MSG_USERAUTH_FAILURE responses,
	// labeled by whether the server reported the session as partially
	// authenticated.
	AuthFailuresByReason = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total number of SSH_MSG_USERAUTH_FAILURE responses received",
		},
		[]string{"partial_success"}, // true, false
	)

	// AuthAttemptDuration tracks how long a method driver call took from
	// its first request to its terminal result.
	AuthAttemptDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of an authentication method attempt in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"method"},
	)
)
