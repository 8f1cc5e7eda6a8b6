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
	// UserauthPacketsSent tracks userauth packets written to the
	// transport, labeled by SSH message name (e.g. "USERAUTH_REQUEST").
	UserauthPacketsSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "userauth",
			Name:      "packets_sent_total",
			Help:      "Total number of userauth packets sent",
		},
		[]string{"message"},
	)

	// UserauthPacketsReceived tracks userauth packets dispatched from
	// the transport, labeled by SSH message name.
	UserauthPacketsReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "userauth",
			Name:      "packets_received_total",
			Help:      "Total number of userauth packets received",
		},
		[]string{"message"},
	)

	// BannersReceived tracks SSH_MSG_USERAUTH_BANNER packets.
	BannersReceived = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "userauth",
			Name:      "banners_received_total",
			Help:      "Total number of userauth banner messages received",
		},
	)

	// UserauthPacketSize tracks the wire size of userauth packets sent
	// or received.
	UserauthPacketSize = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "userauth",
			Name:      "packet_size_bytes",
			Help:      "Size of userauth packets in bytes",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10), // 16B to 4MB
		},
		[]string{"direction"}, // sent, received
	)
)
