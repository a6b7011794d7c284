package services

// Services defined in this package:
// - AuthService: registration, login, token refresh and email verification
// - UserService: profile, game interests and participation stats
// - LocationService: geocoding, location updates and community auto-assignment
// - CommunityService: community listing and memberships
// - EventService: game event CRUD, join/leave and proximity listings
// - DiscussionService: community discussions, comments and likes
